package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/comandaclub/comanda/internal/pos"
	"github.com/comandaclub/comanda/internal/state"
	"github.com/comandaclub/comanda/pkg"
)

const MaxBodyBytes = 1 << 20

// Handler exposes the CRUD surface (menu, tables, receipts,
// attendance) and the order action routes. Order routes never write
// the store directly; they dispatch into the state container and let
// the sync pipeline drive persistence.
type Handler struct {
	logger    aqm.Logger
	config    *aqm.Config
	tlm       *telemetry.HTTP
	container *state.Container
	menuRepo  pos.MenuItemRepo
	menuCache *pos.MenuItemCache
	tableRepo pos.TableRepo
	receipts  pos.ReceiptRepo
	shifts    pos.ShiftRepo
	publisher events.Publisher
}

type HandlerDeps struct {
	Container *state.Container
	MenuRepo  pos.MenuItemRepo
	MenuCache *pos.MenuItemCache
	TableRepo pos.TableRepo
	Receipts  pos.ReceiptRepo
	Shifts    pos.ShiftRepo
	Publisher events.Publisher
}

func NewHandler(hd HandlerDeps, config *aqm.Config, logger aqm.Logger) *Handler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &Handler{
		logger:    logger,
		config:    config,
		tlm:       telemetry.NewHTTP(),
		container: hd.Container,
		menuRepo:  hd.MenuRepo,
		menuCache: hd.MenuCache,
		tableRepo: hd.TableRepo,
		receipts:  hd.Receipts,
		shifts:    hd.Shifts,
		publisher: hd.Publisher,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.OpenOrder)
		r.Get("/", h.ListOrders)
		r.Get("/notices", h.ListNotices)
		r.Get("/{id}", h.GetOrder)
		r.Post("/{id}/items", h.AddItem)
		r.Delete("/{id}/items/{menuItemID}", h.RemoveItem)
		r.Patch("/{id}/items/{menuItemID}/quantity", h.SetItemQuantity)
		r.Patch("/{id}/items/{menuItemID}/discount", h.SetItemDiscount)
		r.Patch("/{id}/customer", h.AssignCustomer)
		r.Post("/{id}/review", h.ReviewOrder)
		r.Post("/{id}/save", h.SaveOrder)
		r.Post("/{id}/complete", h.CompleteOrder)
		r.Post("/{id}/cancel", h.CancelOrder)
	})

	r.Route("/menu/items", func(r chi.Router) {
		r.Post("/", h.CreateMenuItem)
		r.Get("/", h.ListMenuItems)
		r.Get("/{id}", h.GetMenuItem)
		r.Put("/{id}", h.UpdateMenuItem)
		r.Delete("/{id}", h.DeleteMenuItem)
	})

	r.Route("/tables", func(r chi.Router) {
		r.Post("/", h.CreateTable)
		r.Get("/", h.ListTables)
		r.Get("/{id}", h.GetTable)
		r.Put("/{id}", h.UpdateTable)
		r.Delete("/{id}", h.DeleteTable)
	})

	r.Route("/receipts", func(r chi.Router) {
		r.Get("/", h.ListReceipts)
		r.Get("/{id}", h.GetReceipt)
	})

	r.Route("/attendance", func(r chi.Router) {
		r.Post("/clock-in", h.ClockIn)
		r.Post("/{id}/clock-out", h.ClockOut)
		r.Get("/", h.ListShifts)
		r.Get("/open", h.ListOpenShifts)
	})
}

// Order actions

type openOrderRequest struct {
	TableID uuid.UUID `json:"table_id"`
}

func (h *Handler) OpenOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.OpenOrder")
	defer finish()

	var req openOrderRequest
	if !h.decode(w, r, &req) {
		return
	}

	action := state.Action{
		Type:    state.ActionOrderOpened,
		OrderID: aqm.GenerateNewID(),
		TableID: req.TableID,
	}
	if err := h.container.Dispatch(action); err != nil {
		aqm.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	aqm.RespondSuccess(w, h.container.Order(action.OrderID))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrders")
	defer finish()

	var orders []*pos.Order
	for _, id := range h.container.OngoingIDs() {
		orders = append(orders, h.container.Order(id))
	}
	for _, id := range h.container.CompletedIDs() {
		orders = append(orders, h.container.Order(id))
	}
	aqm.RespondCollection(w, orders, "/orders")
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	order := h.container.Order(id)
	if order == nil {
		aqm.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}
	aqm.RespondSuccess(w, order)
}

func (h *Handler) ListNotices(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListNotices")
	defer finish()

	aqm.RespondCollection(w, h.container.Notices(), "/orders/notices")
}

type addItemRequest struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Quantity   int       `json:"quantity"`
	Notes      string    `json:"notes,omitempty"`
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AddItem")
	defer finish()

	log := h.log(r)
	orderID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req addItemRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	menuItem, err := h.menuCache.Ensure(r.Context(), req.MenuItemID)
	if err != nil {
		log.Info("unknown menu item", "menu_item_id", req.MenuItemID.String(), "error", err)
		aqm.RespondError(w, http.StatusBadRequest, "Unknown menu item")
		return
	}
	if !menuItem.Active {
		aqm.RespondError(w, http.StatusBadRequest, "Menu item is not available")
		return
	}

	action := state.Action{
		Type:    state.ActionItemAdded,
		OrderID: orderID,
		Item: &pos.OrderItem{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			UnitPrice:  menuItem.Price,
			Quantity:   req.Quantity,
			Notes:      req.Notes,
		},
	}
	if err := h.container.Dispatch(action); err != nil {
		aqm.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	aqm.RespondSuccess(w, h.container.Order(orderID))
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.RemoveItem")
	defer finish()

	orderID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	menuItemID, ok := h.pathID(w, r, "menuItemID")
	if !ok {
		return
	}

	err := h.container.Dispatch(state.Action{
		Type:       state.ActionItemRemoved,
		OrderID:    orderID,
		MenuItemID: menuItemID,
	})
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	aqm.RespondSuccess(w, h.container.Order(orderID))
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) SetItemQuantity(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SetItemQuantity")
	defer finish()

	orderID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	menuItemID, ok := h.pathID(w, r, "menuItemID")
	if !ok {
		return
	}
	var req quantityRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.container.Dispatch(state.Action{
		Type:       state.ActionItemQuantity,
		OrderID:    orderID,
		MenuItemID: menuItemID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	aqm.RespondSuccess(w, h.container.Order(orderID))
}

func (h *Handler) SetItemDiscount(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SetItemDiscount")
	defer finish()

	orderID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	menuItemID, ok := h.pathID(w, r, "menuItemID")
	if !ok {
		return
	}
	var discount pos.Discount
	if !h.decode(w, r, &discount) {
		return
	}

	err := h.container.Dispatch(state.Action{
		Type:       state.ActionDiscountApplied,
		OrderID:    orderID,
		MenuItemID: menuItemID,
		Discount:   &discount,
	})
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	aqm.RespondSuccess(w, h.container.Order(orderID))
}

type customerRequest struct {
	Name string `json:"name"`
}

func (h *Handler) AssignCustomer(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.AssignCustomer")
	defer finish()

	orderID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req customerRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.container.Dispatch(state.Action{
		Type:     state.ActionCustomerAssigned,
		OrderID:  orderID,
		Customer: req.Name,
	})
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	aqm.RespondSuccess(w, h.container.Order(orderID))
}

func (h *Handler) ReviewOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ReviewOrder")
	defer finish()

	h.dispatchSimple(w, r, state.ActionOrderReviewed)
}

func (h *Handler) SaveOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SaveOrder")
	defer finish()

	h.dispatchSimple(w, r, state.ActionOrderSaved)
}

func (h *Handler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CompleteOrder")
	defer finish()

	orderID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var payment state.Payment
	if !h.decode(w, r, &payment) {
		return
	}

	err := h.container.Dispatch(state.Action{
		Type:    state.ActionOrderCompleted,
		OrderID: orderID,
		Payment: &payment,
	})
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	aqm.RespondSuccess(w, h.container.Order(orderID))
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CancelOrder")
	defer finish()

	orderID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	err := h.container.Dispatch(state.Action{
		Type:    state.ActionOrderCancelled,
		OrderID: orderID,
	})
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	aqm.RespondSuccess(w, map[string]string{"status": "cancelled"})
}

func (h *Handler) dispatchSimple(w http.ResponseWriter, r *http.Request, t state.ActionType) {
	orderID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	err := h.container.Dispatch(state.Action{Type: t, OrderID: orderID})
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	aqm.RespondSuccess(w, h.container.Order(orderID))
}

// Menu items

func (h *Handler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateMenuItem")
	defer finish()

	log := h.log(r)
	var item pos.MenuItem
	if !h.decode(w, r, &item) {
		return
	}
	if item.Name == "" || item.Price < 0 {
		aqm.RespondError(w, http.StatusBadRequest, "name is required and price cannot be negative")
		return
	}
	if item.RestaurantID == uuid.Nil {
		item.RestaurantID = h.container.RestaurantID()
	}
	item.Active = true
	item.BeforeCreate()

	if err := h.menuRepo.Create(r.Context(), &item); err != nil {
		log.Error("cannot create menu item", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not create menu item")
		return
	}
	h.menuCache.Set(&item)
	h.publishMenuChange(r.Context(), &item, pkg.EventMenuItemChanged)
	aqm.RespondSuccess(w, &item)
}

func (h *Handler) ListMenuItems(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListMenuItems")
	defer finish()

	items, err := h.menuRepo.ListByRestaurant(r.Context(), h.container.RestaurantID())
	if err != nil {
		h.log(r).Error("cannot list menu items", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not list menu items")
		return
	}
	aqm.RespondCollection(w, items, "/menu/items")
}

func (h *Handler) GetMenuItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetMenuItem")
	defer finish()

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	item, err := h.menuRepo.Get(r.Context(), id)
	if err != nil {
		h.log(r).Error("cannot get menu item", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not get menu item")
		return
	}
	if item == nil {
		aqm.RespondError(w, http.StatusNotFound, "Menu item not found")
		return
	}
	aqm.RespondSuccess(w, item)
}

func (h *Handler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateMenuItem")
	defer finish()

	log := h.log(r)
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var item pos.MenuItem
	if !h.decode(w, r, &item) {
		return
	}
	item.ID = id
	if item.RestaurantID == uuid.Nil {
		item.RestaurantID = h.container.RestaurantID()
	}
	item.BeforeUpdate()

	if err := h.menuRepo.Save(r.Context(), &item); err != nil {
		log.Error("cannot update menu item", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update menu item")
		return
	}
	h.menuCache.Invalidate(id)
	h.publishMenuChange(r.Context(), &item, pkg.EventMenuItemChanged)
	aqm.RespondSuccess(w, &item)
}

func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteMenuItem")
	defer finish()

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.menuRepo.Delete(r.Context(), id); err != nil {
		h.log(r).Error("cannot delete menu item", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not delete menu item")
		return
	}
	h.menuCache.Invalidate(id)
	h.publishMenuChange(r.Context(), &pos.MenuItem{ID: id, RestaurantID: h.container.RestaurantID()}, pkg.EventMenuItemRemoved)
	aqm.RespondSuccess(w, map[string]string{"status": "deleted"})
}

// Tables

func (h *Handler) CreateTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateTable")
	defer finish()

	var table pos.Table
	if !h.decode(w, r, &table) {
		return
	}
	if table.RestaurantID == uuid.Nil {
		table.RestaurantID = h.container.RestaurantID()
	}
	if table.Status == "" {
		table.Status = "available"
	}
	table.BeforeCreate()

	if err := h.tableRepo.Create(r.Context(), &table); err != nil {
		h.log(r).Error("cannot create table", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not create table")
		return
	}
	aqm.RespondSuccess(w, &table)
}

func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListTables")
	defer finish()

	tables, err := h.tableRepo.ListByRestaurant(r.Context(), h.container.RestaurantID())
	if err != nil {
		h.log(r).Error("cannot list tables", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not list tables")
		return
	}
	aqm.RespondCollection(w, tables, "/tables")
}

func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetTable")
	defer finish()

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	table, err := h.tableRepo.Get(r.Context(), id)
	if err != nil {
		h.log(r).Error("cannot get table", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not get table")
		return
	}
	if table == nil {
		aqm.RespondError(w, http.StatusNotFound, "Table not found")
		return
	}
	aqm.RespondSuccess(w, table)
}

func (h *Handler) UpdateTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateTable")
	defer finish()

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var table pos.Table
	if !h.decode(w, r, &table) {
		return
	}
	table.ID = id
	if table.RestaurantID == uuid.Nil {
		table.RestaurantID = h.container.RestaurantID()
	}
	table.BeforeUpdate()

	if err := h.tableRepo.Save(r.Context(), &table); err != nil {
		h.log(r).Error("cannot update table", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not update table")
		return
	}
	aqm.RespondSuccess(w, &table)
}

func (h *Handler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteTable")
	defer finish()

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.tableRepo.Delete(r.Context(), id); err != nil {
		h.log(r).Error("cannot delete table", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not delete table")
		return
	}
	aqm.RespondSuccess(w, map[string]string{"status": "deleted"})
}

// Receipts (read-only; creation happens through the background queue)

func (h *Handler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListReceipts")
	defer finish()

	receipts, err := h.receipts.ListByRestaurant(r.Context(), h.container.RestaurantID())
	if err != nil {
		h.log(r).Error("cannot list receipts", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not list receipts")
		return
	}
	aqm.RespondCollection(w, receipts, "/receipts")
}

func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetReceipt")
	defer finish()

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	receipt, err := h.receipts.Get(r.Context(), id)
	if err != nil {
		h.log(r).Error("cannot get receipt", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not get receipt")
		return
	}
	if receipt == nil {
		aqm.RespondError(w, http.StatusNotFound, "Receipt not found")
		return
	}
	aqm.RespondSuccess(w, receipt)
}

// Attendance

type clockInRequest struct {
	StaffID   uuid.UUID `json:"staff_id"`
	StaffName string    `json:"staff_name"`
}

func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ClockIn")
	defer finish()

	var req clockInRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.StaffName == "" {
		aqm.RespondError(w, http.StatusBadRequest, "staff_name is required")
		return
	}

	shift := pos.NewShift(h.container.RestaurantID(), req.StaffID, req.StaffName)
	if err := h.shifts.Create(r.Context(), shift); err != nil {
		h.log(r).Error("cannot create shift", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not clock in")
		return
	}
	aqm.RespondSuccess(w, shift)
}

func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ClockOut")
	defer finish()

	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	shift, err := h.shifts.Get(r.Context(), id)
	if err != nil {
		h.log(r).Error("cannot get shift", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not clock out")
		return
	}
	if shift == nil {
		aqm.RespondError(w, http.StatusNotFound, "Shift not found")
		return
	}
	if !shift.IsOpen() {
		aqm.RespondError(w, http.StatusBadRequest, "Shift is already closed")
		return
	}
	shift.Close()
	if err := h.shifts.Save(r.Context(), shift); err != nil {
		h.log(r).Error("cannot save shift", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not clock out")
		return
	}
	aqm.RespondSuccess(w, shift)
}

func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListShifts")
	defer finish()

	shifts, err := h.shifts.ListByRestaurant(r.Context(), h.container.RestaurantID())
	if err != nil {
		h.log(r).Error("cannot list shifts", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not list shifts")
		return
	}
	aqm.RespondCollection(w, shifts, "/attendance")
}

func (h *Handler) ListOpenShifts(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOpenShifts")
	defer finish()

	shifts, err := h.shifts.ListOpen(r.Context(), h.container.RestaurantID())
	if err != nil {
		h.log(r).Error("cannot list open shifts", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, "Could not list open shifts")
		return
	}
	aqm.RespondCollection(w, shifts, "/attendance/open")
}

// Helpers

func (h *Handler) publishMenuChange(ctx context.Context, item *pos.MenuItem, eventType string) {
	if h.publisher == nil {
		return
	}
	event := pkg.MenuItemChangedEvent{
		EventType:    eventType,
		RestaurantID: item.RestaurantID.String(),
		MenuItemID:   item.ID.String(),
		OccurredAt:   time.Now(),
	}
	msg, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := h.publisher.Publish(ctx, pkg.MenuTopic, msg); err != nil {
		h.logger.Info("cannot publish menu event", "menu_item_id", item.ID.String(), "error", err)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, "Cannot read request body")
		return false
	}
	if len(body) == 0 {
		return true
	}
	if err := json.Unmarshal(body, out); err != nil {
		aqm.RespondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		aqm.RespondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s", key))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("path", r.URL.Path, "method", r.Method)
}
