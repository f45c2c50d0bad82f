package businessflow

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/cleaning-orders/app/dto"
	"github.com/amirphl/cleaning-orders/app/services"
	"github.com/amirphl/cleaning-orders/config"
	"github.com/amirphl/cleaning-orders/models"
	"github.com/amirphl/cleaning-orders/repository"
	"github.com/amirphl/cleaning-orders/utils"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// exportBatchSize bounds each page read while exporting
const exportBatchSize = 500

// AdminOrderFlow is the back-office side of the order lifecycle
type AdminOrderFlow interface {
	GetOrder(ctx context.Context, orderUUID string) (*dto.AdminOrderDTO, error)
	ListOrders(ctx context.Context, req *dto.AdminListOrdersRequest) (*dto.AdminListOrdersResponse, error)
	UpdateStatus(ctx context.Context, orderUUID, newStatus string, adminNotes *string, adminID uint) (*dto.AdminOrderDTO, error)
	SetFinalPrice(ctx context.Context, orderUUID, raw string) (*dto.AdminOrderDTO, error)
	UpdateOrder(ctx context.Context, orderUUID string, req *dto.AdminUpdateOrderRequest, adminID uint) (*dto.AdminOrderDTO, error)
	SendQuote(ctx context.Context, orderUUID string) (*dto.AdminSendQuoteResponse, error)
	StatusHistory(ctx context.Context, orderUUID string) ([]dto.OrderStatusChangeDTO, error)
	ExportCSV(ctx context.Context, req *dto.AdminListOrdersRequest) (string, []byte, error)
	ExportExcel(ctx context.Context, req *dto.AdminListOrdersRequest) (string, []byte, error)
}

// AdminOrderFlowImpl implements AdminOrderFlow
type AdminOrderFlowImpl struct {
	orderRepo  repository.OrderRepository
	changeRepo repository.OrderStatusChangeRepository
	notifier   services.Notifier
	db         *gorm.DB
	cfg        config.OrdersConfig
	loc        *time.Location
	now        func() time.Time
}

func NewAdminOrderFlow(
	orderRepo repository.OrderRepository,
	changeRepo repository.OrderStatusChangeRepository,
	notifier services.Notifier,
	db *gorm.DB,
	cfg config.OrdersConfig,
) AdminOrderFlow {
	return &AdminOrderFlowImpl{
		orderRepo:  orderRepo,
		changeRepo: changeRepo,
		notifier:   notifier,
		db:         db,
		cfg:        cfg,
		loc:        utils.LoadLocationOrUTC(cfg.BusinessTimezone),
		now:        utils.UTCNow,
	}
}

var maxFinalPrice = decimal.NewFromInt(math.MaxInt64)

// ParseFinalPrice reads an admin-entered price. Decimal commas are accepted
// and the value is rounded half-up to whole units. Empty, unparsable and
// negative input yield nil.
func ParseFinalPrice(raw string) *int64 {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return nil
	}
	d = d.Round(0)
	if d.GreaterThan(maxFinalPrice) {
		return nil
	}
	v := d.IntPart()
	return &v
}

func (f *AdminOrderFlowImpl) getOrder(ctx context.Context, orderUUID string) (*models.Order, error) {
	order, err := f.orderRepo.ByUUID(ctx, strings.TrimSpace(orderUUID))
	if err != nil {
		return nil, NewBusinessError("ORDER_LOOKUP_FAILED", "Failed to look up order", err)
	}
	if order == nil {
		return nil, NewBusinessError("ORDER_NOT_FOUND", "Order not found", ErrOrderNotFound)
	}
	return order, nil
}

func (f *AdminOrderFlowImpl) GetOrder(ctx context.Context, orderUUID string) (*dto.AdminOrderDTO, error) {
	order, err := f.getOrder(ctx, orderUUID)
	if err != nil {
		return nil, err
	}
	view := ToAdminOrderDTO(*order)
	return &view, nil
}

// listFilter maps the request onto a store filter. "all" and "" mean any status.
func listFilter(req *dto.AdminListOrdersRequest) (models.OrderFilter, error) {
	var filter models.OrderFilter
	if req == nil {
		return filter, nil
	}
	if s := strings.TrimSpace(req.Status); s != "" && !strings.EqualFold(s, "all") {
		status, ok := models.ParseOrderStatus(s)
		if !ok {
			return filter, NewBusinessErrorf("INVALID_STATUS", "Unknown status %q", ErrInvalidStatus, s)
		}
		filter.Status = &status
	}
	if term := strings.TrimSpace(req.Search); term != "" {
		filter.Search = &term
	}
	return filter, nil
}

func pageBounds(req *dto.AdminListOrdersRequest) (limit, offset int) {
	limit = utils.DefaultOrderPageSize
	if req == nil {
		return limit, 0
	}
	if req.Limit > 0 {
		limit = min(req.Limit, utils.MaxOrderPageSize)
	}
	return limit, max(req.Offset, 0)
}

const newestFirst = "created_at DESC, id DESC"

func (f *AdminOrderFlowImpl) ListOrders(ctx context.Context, req *dto.AdminListOrdersRequest) (*dto.AdminListOrdersResponse, error) {
	filter, err := listFilter(req)
	if err != nil {
		return nil, err
	}
	limit, offset := pageBounds(req)

	orders, err := f.orderRepo.ByFilter(ctx, filter, newestFirst, limit, offset)
	if err != nil {
		return nil, NewBusinessError("ORDER_LIST_FAILED", "Failed to list orders", err)
	}
	total, err := f.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("ORDER_COUNT_FAILED", "Failed to count orders", err)
	}

	items := make([]dto.AdminOrderDTO, 0, len(orders))
	for _, o := range orders {
		items = append(items, ToAdminOrderDTO(*o))
	}
	return &dto.AdminListOrdersResponse{
		Orders: items,
		Total:  total,
		Pagination: dto.OffsetPagination{
			Total:  total,
			Limit:  limit,
			Offset: offset,
		},
	}, nil
}

func (f *AdminOrderFlowImpl) UpdateStatus(ctx context.Context, orderUUID, newStatus string, adminNotes *string, adminID uint) (*dto.AdminOrderDTO, error) {
	return f.UpdateOrder(ctx, orderUUID, &dto.AdminUpdateOrderRequest{
		Status:     &newStatus,
		AdminNotes: adminNotes,
	}, adminID)
}

func (f *AdminOrderFlowImpl) SetFinalPrice(ctx context.Context, orderUUID, raw string) (*dto.AdminOrderDTO, error) {
	adminID, _ := utils.AdminIDFromContext(ctx)
	price := dto.PriceInput(raw)
	return f.UpdateOrder(ctx, orderUUID, &dto.AdminUpdateOrderRequest{FinalPrice: &price}, adminID)
}

// UpdateOrder applies status, notes and final price in one transaction.
// A status write also appends a history row.
func (f *AdminOrderFlowImpl) UpdateOrder(ctx context.Context, orderUUID string, req *dto.AdminUpdateOrderRequest, adminID uint) (*dto.AdminOrderDTO, error) {
	if req == nil {
		req = &dto.AdminUpdateOrderRequest{}
	}

	var target *models.OrderStatus
	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		s, ok := models.ParseOrderStatus(*req.Status)
		if !ok {
			return nil, NewBusinessErrorf("INVALID_STATUS", "Unknown status %q", ErrInvalidStatus, *req.Status)
		}
		target = &s
	}

	var updated *models.Order
	var previous models.OrderStatus
	err := repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		order, err := f.getOrder(txCtx, orderUUID)
		if err != nil {
			return err
		}

		previous = order.Status
		now := f.now()
		fields := map[string]any{"updated_at": now}

		if target != nil {
			if err := models.ValidateStatusTransition(order.Status, *target, f.cfg.StrictStatusTransitions); err != nil {
				if errors.Is(err, models.ErrStatusTransitionNotAllowed) {
					return NewBusinessError("STATUS_TRANSITION_NOT_ALLOWED", "Status transition not allowed", errors.Join(ErrStatusTransitionNotAllowed, err))
				}
				return NewBusinessError("INVALID_STATUS", "Invalid status", errors.Join(ErrInvalidStatus, err))
			}
			fields["status"] = *target
		}

		var notes *string
		if req.AdminNotes != nil {
			notes = utils.SanitizeOptional(req.AdminNotes)
			fields["admin_notes"] = notes
		}
		if req.FinalPrice != nil {
			fields["final_price"] = ParseFinalPrice(string(*req.FinalPrice))
		}

		if err := f.orderRepo.Update(txCtx, order.ID, fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewBusinessError("ORDER_NOT_FOUND", "Order not found", ErrOrderNotFound)
			}
			return NewBusinessError("ORDER_UPDATE_FAILED", "Failed to update order", err)
		}

		if target != nil {
			change := &models.OrderStatusChange{
				OrderID:    order.ID,
				FromStatus: order.Status,
				ToStatus:   *target,
				Notes:      notes,
				ChangedAt:  now,
			}
			if adminID != 0 {
				change.AdminID = &adminID
			}
			if err := f.changeRepo.Save(txCtx, change); err != nil {
				return NewBusinessError("STATUS_HISTORY_FAILED", "Failed to record status change", err)
			}
		}

		updated, err = f.getOrder(txCtx, orderUUID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if target != nil {
		statusTransitionsTotal.WithLabelValues(string(previous), string(*target)).Inc()
	}
	utils.LogKV("info", "order updated", map[string]any{
		"tracking_code": updated.TrackingCode,
		"admin_id":      adminID,
		"status":        updated.Status,
		"request_id":    utils.RequestIDFromContext(ctx),
	})

	view := ToAdminOrderDTO(*updated)
	return &view, nil
}

// SendQuote emails the price offer and stamps quote_sent_at only after a successful send
func (f *AdminOrderFlowImpl) SendQuote(ctx context.Context, orderUUID string) (*dto.AdminSendQuoteResponse, error) {
	order, err := f.getOrder(ctx, orderUUID)
	if err != nil {
		return nil, err
	}
	if f.notifier == nil {
		return nil, NewBusinessError("NOTIFIER_FAILED", "Notifier not configured", ErrNotifierFailed)
	}

	if err := f.notifier.SendQuoteDocument(ctx, order); err != nil {
		quoteSendsTotal.WithLabelValues("error").Inc()
		notificationsTotal.WithLabelValues("quote", "error").Inc()
		utils.LogKV("error", "quote email failed", map[string]any{
			"tracking_code": order.TrackingCode,
			"error":         err.Error(),
			"request_id":    utils.RequestIDFromContext(ctx),
		})
		return nil, NewBusinessError("NOTIFIER_FAILED", "Failed to send quote", errors.Join(ErrNotifierFailed, err))
	}
	quoteSendsTotal.WithLabelValues("ok").Inc()
	notificationsTotal.WithLabelValues("quote", "ok").Inc()

	now := f.now()
	if err := f.orderRepo.Update(ctx, order.ID, map[string]any{
		"quote_sent_at": now,
		"updated_at":    now,
	}); err != nil {
		return nil, NewBusinessError("ORDER_UPDATE_FAILED", "Quote sent but the order was not stamped", err)
	}

	return &dto.AdminSendQuoteResponse{
		TrackingCode: order.TrackingCode,
		QuoteSentAt:  formatTime(now),
	}, nil
}

func (f *AdminOrderFlowImpl) StatusHistory(ctx context.Context, orderUUID string) ([]dto.OrderStatusChangeDTO, error) {
	order, err := f.getOrder(ctx, orderUUID)
	if err != nil {
		return nil, err
	}
	changes, err := f.changeRepo.ByOrderID(ctx, order.ID)
	if err != nil {
		return nil, NewBusinessError("STATUS_HISTORY_FAILED", "Failed to load status history", err)
	}
	out := make([]dto.OrderStatusChangeDTO, 0, len(changes))
	for _, c := range changes {
		out = append(out, ToOrderStatusChangeDTO(*c))
	}
	return out, nil
}

var exportHeader = []string{"ID", "Imię", "Nazwisko", "E-mail", "Telefon", "Adres", "Typ sprzątania", "Metraż", "Termin", "Status", "Data utworzenia"}

// exportRows reads the whole filtered set, ignoring the page bounds of req
func (f *AdminOrderFlowImpl) exportRows(ctx context.Context, req *dto.AdminListOrdersRequest) ([][]string, error) {
	filter, err := listFilter(req)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for offset := 0; ; offset += exportBatchSize {
		batch, err := f.orderRepo.ByFilter(ctx, filter, newestFirst, exportBatchSize, offset)
		if err != nil {
			return nil, NewBusinessError("ORDER_EXPORT_FAILED", "Failed to read orders", err)
		}
		for _, o := range batch {
			rows = append(rows, []string{
				o.TrackingCode,
				o.FirstName,
				o.LastName,
				o.Email,
				o.Phone,
				o.Address,
				string(o.CleaningType),
				strconv.Itoa(o.SquareMeters),
				o.PreferredDate,
				string(o.Status),
				o.CreatedAt.In(f.loc).Format("02.01.2006"),
			})
		}
		if len(batch) < exportBatchSize {
			return rows, nil
		}
	}
}

func (f *AdminOrderFlowImpl) exportName(ext string) string {
	return "zlecenia_" + f.now().In(f.loc).Format(utils.DateLayout) + ext
}

// ExportCSV writes the filtered orders as CSV
func (f *AdminOrderFlowImpl) ExportCSV(ctx context.Context, req *dto.AdminListOrdersRequest) (string, []byte, error) {
	rows, err := f.exportRows(ctx, req)
	if err != nil {
		return "", nil, err
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	if err := w.Write(exportHeader); err != nil {
		return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV header", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return "", nil, NewBusinessError("CSV_WRITE_ERROR", "Failed to write CSV rows", err)
	}

	return f.exportName(".csv"), buf.Bytes(), nil
}

// ExportExcel writes the same rows as ExportCSV into a single-sheet workbook
func (f *AdminOrderFlowImpl) ExportExcel(ctx context.Context, req *dto.AdminListOrdersRequest) (string, []byte, error) {
	rows, err := f.exportRows(ctx, req)
	if err != nil {
		return "", nil, err
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	const sheet = "Zlecenia"
	if err := xl.SetSheetName(xl.GetSheetName(0), sheet); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to prepare sheet", err)
	}
	header := exportHeader
	if err := xl.SetSheetRow(sheet, "A1", &header); err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write header", err)
	}
	for ri, record := range rows {
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		if err := xl.SetSheetRow(sheet, cellRef, &record); err != nil {
			return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write row", err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}
	return f.exportName(".xlsx"), buf.Bytes(), nil
}
