package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/khatapp/khata_backend/internal/apperrors"
	"github.com/khatapp/khata_backend/internal/core/domain"
	portsrepo "github.com/khatapp/khata_backend/internal/core/ports/repositories"
	portssvc "github.com/khatapp/khata_backend/internal/core/ports/services"
	"github.com/khatapp/khata_backend/internal/dto"
	"github.com/shopspring/decimal"
)

var (
	ErrAmountNotPositive  = errors.New("amount must be greater than zero")
	ErrCustomerRequired   = errors.New("udhaar sales require a customer")
	ErrUnknownPaymentType = errors.New("unknown payment type")
	ErrUnknownSaleSource  = errors.New("unknown sale source")
)

// bulkEditReason stamps edits applied through the bulk endpoint.
const bulkEditReason = "Bulk Edit"

// analyticsTimeout bounds the detached stat update so a slow database cannot
// leak goroutines forever.
const analyticsTimeout = 5 * time.Second

// ledgerService implements the sale/udhaar ledger on top of the repositories.
type ledgerService struct {
	BaseService
	saleRepo     portsrepo.SaleRepositoryWithTx
	udhaarRepo   portsrepo.UdhaarRepositoryFacade
	customerRepo portsrepo.CustomerRepositoryFacade
	analyticsSvc portssvc.AnalyticsSvc
	auditSvc     portssvc.AuditSvc
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(
	saleRepo portsrepo.SaleRepositoryWithTx,
	udhaarRepo portsrepo.UdhaarRepositoryFacade,
	customerRepo portsrepo.CustomerRepositoryFacade,
	shopAuthorizer portssvc.ShopAuthorizerSvc,
	analyticsSvc portssvc.AnalyticsSvc,
	auditSvc portssvc.AuditSvc,
) portssvc.LedgerSvcFacade {
	return &ledgerService{
		BaseService:  BaseService{ShopAuthorizer: shopAuthorizer},
		saleRepo:     saleRepo,
		udhaarRepo:   udhaarRepo,
		customerRepo: customerRepo,
		analyticsSvc: analyticsSvc,
		auditSvc:     auditSvc,
	}
}

// Ensure ledgerService implements the portssvc.LedgerSvcFacade interface
var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// --- Writes ---

// RecordSale validates and commits a new sale. UDHAAR sales get a linked OPEN
// credit record and are checked against the customer's credit limit inside
// the insert transaction.
func (s *ledgerService) RecordSale(ctx context.Context, shopID string, req dto.RecordSaleRequest, userID string) (*domain.Sale, error) {
	if err := s.AuthorizeUser(ctx, userID, shopID, domain.RoleStaff); err != nil {
		return nil, err
	}

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrAmountNotPositive)
	}

	paymentType := domain.PaymentType(req.PaymentType)
	if !paymentType.Valid() {
		return nil, fmt.Errorf("%w: %w %q", apperrors.ErrValidation, ErrUnknownPaymentType, req.PaymentType)
	}

	source := domain.SourceManual
	if req.Source != "" {
		source = domain.SaleSource(req.Source)
		if !source.Valid() {
			return nil, fmt.Errorf("%w: %w %q", apperrors.ErrValidation, ErrUnknownSaleSource, req.Source)
		}
	}

	if paymentType.IsCredit() && req.CustomerID == nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrCustomerRequired)
	}

	// Resolve the customer up front: a sale against a deleted or foreign
	// customer must not enter the ledger.
	var customer *domain.Customer
	if req.CustomerID != nil {
		var err error
		customer, err = s.customerRepo.FindCustomerByID(ctx, shopID, *req.CustomerID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("customer %s: %w", *req.CustomerID, apperrors.ErrNotFound)
			}
			s.LogError(ctx, err, "Failed to fetch customer for sale", slog.String("shop_id", shopID))
			return nil, fmt.Errorf("failed to fetch customer: %w", err)
		}
	}

	now := time.Now().UTC()
	sale := domain.Sale{
		SaleID:      uuid.NewString(),
		ShopID:      shopID,
		CustomerID:  req.CustomerID,
		Amount:      req.Amount,
		PaymentType: paymentType,
		Source:      source,
		Notes:       req.Notes,
		Tags:        req.Tags,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	var udhaar *domain.Udhaar
	var check *portsrepo.CreditCheck
	if paymentType.IsCredit() {
		udhaar = &domain.Udhaar{
			UdhaarID:   uuid.NewString(),
			ShopID:     shopID,
			CustomerID: *req.CustomerID,
			SaleID:     sale.SaleID,
			Amount:     req.Amount,
			Status:     domain.UdhaarOpen,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		if customer.CreditLimit != nil {
			check = &portsrepo.CreditCheck{
				Limit:  *customer.CreditLimit,
				Bypass: req.BypassCreditLimit,
			}
		}
	}

	if err := s.saleRepo.SaveSale(ctx, sale, udhaar, check); err != nil {
		var limitErr *apperrors.CreditLimitExceededError
		if errors.As(err, &limitErr) {
			s.LogInfo(ctx, "Sale rejected by credit limit",
				slog.String("shop_id", shopID),
				slog.String("customer_id", *req.CustomerID),
				slog.String("exceeded_by", limitErr.ExceededBy.String()))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to save sale", slog.String("shop_id", shopID))
		return nil, fmt.Errorf("failed to save sale: %w", err)
	}

	s.LogInfo(ctx, "Sale recorded",
		slog.String("sale_id", sale.SaleID),
		slog.String("shop_id", shopID),
		slog.String("payment_type", string(paymentType)))

	s.recordAudit(ctx, userID, "sale.recorded", map[string]any{
		"saleID":      sale.SaleID,
		"shopID":      shopID,
		"amount":      sale.Amount.String(),
		"paymentType": string(paymentType),
	})
	s.trackSaleAsync(ctx, sale)

	return &sale, nil
}

// RecordPayment commits a CASH/UPI payment for a customer and settles their
// open credit records oldest-first within the same transaction. Overpayments
// and advance payments are allowed; the surplus simply drives the derived
// balance down (possibly negative).
func (s *ledgerService) RecordPayment(ctx context.Context, shopID, customerID string, req dto.RecordPaymentRequest, userID string) (*dto.PaymentResult, error) {
	if err := s.AuthorizeUser(ctx, userID, shopID, domain.RoleStaff); err != nil {
		return nil, err
	}

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrAmountNotPositive)
	}

	method := domain.PaymentCash
	if req.PaymentMethod != "" {
		method = domain.PaymentType(req.PaymentMethod)
	}
	if !method.IsSettlement() {
		return nil, fmt.Errorf("%w: payment method must be CASH or UPI", apperrors.ErrValidation)
	}

	if _, err := s.customerRepo.FindCustomerByID(ctx, shopID, customerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("customer %s: %w", customerID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch customer: %w", err)
	}

	balanceBefore, err := s.saleRepo.GetBalance(ctx, shopID, customerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to read balance before payment", slog.String("customer_id", customerID))
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}

	now := time.Now().UTC()
	payment := domain.Sale{
		SaleID:      uuid.NewString(),
		ShopID:      shopID,
		CustomerID:  &customerID,
		Amount:      req.Amount,
		PaymentType: method,
		Source:      domain.SourceManual,
		Notes:       req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	settled, err := s.saleRepo.SavePayment(ctx, payment)
	if err != nil {
		s.LogError(ctx, err, "Failed to save payment", slog.String("customer_id", customerID))
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	s.LogInfo(ctx, "Payment recorded",
		slog.String("sale_id", payment.SaleID),
		slog.String("customer_id", customerID),
		slog.Int("records_settled", len(settled)))

	s.recordAudit(ctx, userID, "payment.recorded", map[string]any{
		"saleID":         payment.SaleID,
		"shopID":         shopID,
		"customerID":     customerID,
		"amount":         payment.Amount.String(),
		"recordsSettled": len(settled),
	})

	updated := make([]dto.UdhaarResponse, len(settled))
	for i := range settled {
		updated[i] = dto.ToUdhaarResponse(&settled[i])
	}
	return &dto.PaymentResult{
		Transaction:          dto.ToSaleResponse(&payment),
		UpdatedCreditRecords: updated,
		NewBalance:           balanceBefore.Sub(req.Amount),
	}, nil
}

// planUdhaarAction derives the credit-record side effect of a sale edit from
// the payment-type transition and the amount change.
func planUdhaarAction(existing, updated domain.Sale) portsrepo.UdhaarAction {
	wasCredit := existing.PaymentType.IsCredit()
	isCredit := updated.PaymentType.IsCredit()

	switch {
	case !wasCredit && isCredit:
		return portsrepo.UdhaarActionCreate
	case wasCredit && !isCredit:
		return portsrepo.UdhaarActionDelete
	case wasCredit && isCredit && !existing.Amount.Equal(updated.Amount):
		return portsrepo.UdhaarActionSyncAmount
	default:
		return portsrepo.UdhaarActionNone
	}
}

// applySaleEdit folds an update request into a copy of the existing sale and
// stamps the edit metadata.
func applySaleEdit(existing domain.Sale, req dto.UpdateSaleRequest, userID string, now time.Time) domain.Sale {
	updated := existing
	if req.Amount != nil {
		updated.Amount = *req.Amount
	}
	if req.PaymentType != nil {
		updated.PaymentType = domain.PaymentType(*req.PaymentType)
	}
	if req.Notes != nil {
		updated.Notes = *req.Notes
	}
	if req.Tags != nil {
		updated.Tags = req.Tags
	}
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = userID
	updated.EditedAt = &now
	updated.EditedBy = &userID
	reason := req.EditReason
	updated.EditReason = &reason
	return updated
}

// UpdateSale amends a sale and applies whatever credit-record transition the
// change requires, atomically. Touching the amount or type of a sale whose
// record is already PAID fails with apperrors.ErrUdhaarSettled.
func (s *ledgerService) UpdateSale(ctx context.Context, shopID, saleID string, req dto.UpdateSaleRequest, userID string) (*domain.Sale, error) {
	if err := s.AuthorizeUser(ctx, userID, shopID, domain.RoleStaff); err != nil {
		return nil, err
	}

	if req.Amount != nil && req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrAmountNotPositive)
	}
	if req.PaymentType != nil && !domain.PaymentType(*req.PaymentType).Valid() {
		return nil, fmt.Errorf("%w: %w %q", apperrors.ErrValidation, ErrUnknownPaymentType, *req.PaymentType)
	}

	existing, err := s.saleRepo.FindSaleByID(ctx, shopID, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find sale %s: %w", saleID, err)
	}

	now := time.Now().UTC()
	updated := applySaleEdit(*existing, req, userID, now)

	// A sale cannot become UDHAAR without a customer to owe it.
	if updated.PaymentType.IsCredit() && updated.CustomerID == nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrCustomerRequired)
	}

	update := portsrepo.SaleUpdate{
		Sale:   updated,
		Action: planUdhaarAction(*existing, updated),
	}
	if err := s.saleRepo.UpdateSale(ctx, update); err != nil {
		if errors.Is(err, apperrors.ErrUdhaarSettled) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to update sale", slog.String("sale_id", saleID))
		return nil, fmt.Errorf("failed to update sale %s: %w", saleID, err)
	}

	s.LogInfo(ctx, "Sale updated",
		slog.String("sale_id", saleID),
		slog.String("action", string(update.Action)))

	s.recordAudit(ctx, userID, "sale.updated", map[string]any{
		"saleID":     saleID,
		"shopID":     shopID,
		"editReason": req.EditReason,
		"action":     string(update.Action),
	})

	return &updated, nil
}

// BulkUpdateSales applies one change set to every listed sale, all-or-nothing.
// Any per-sale failure (missing sale, settled udhaar) aborts the whole batch
// and is reported in the aggregated error.
func (s *ledgerService) BulkUpdateSales(ctx context.Context, shopID string, req dto.BulkUpdateSalesRequest, userID string) (int, error) {
	if err := s.AuthorizeUser(ctx, userID, shopID, domain.RoleStaff); err != nil {
		return 0, err
	}

	if req.PaymentType != nil && !domain.PaymentType(*req.PaymentType).Valid() {
		return 0, fmt.Errorf("%w: %w %q", apperrors.ErrValidation, ErrUnknownPaymentType, *req.PaymentType)
	}

	sales, err := s.saleRepo.FindSalesByIDs(ctx, shopID, req.SaleIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to load sales for bulk update: %w", err)
	}

	found := make(map[string]domain.Sale, len(sales))
	for _, sale := range sales {
		found[sale.SaleID] = sale
	}

	failures := map[string]error{}
	for _, id := range req.SaleIDs {
		if _, ok := found[id]; !ok {
			failures[id] = apperrors.ErrNotFound
		}
	}
	if len(failures) > 0 {
		return 0, &apperrors.BulkOperationError{Failures: failures}
	}

	now := time.Now().UTC()
	editReq := dto.UpdateSaleRequest{
		PaymentType: req.PaymentType,
		Tags:        req.Tags,
		EditReason:  bulkEditReason,
	}
	updates := make([]portsrepo.SaleUpdate, 0, len(req.SaleIDs))
	for _, id := range req.SaleIDs {
		existing := found[id]
		updated := applySaleEdit(existing, editReq, userID, now)
		if updated.PaymentType.IsCredit() && updated.CustomerID == nil {
			failures[id] = fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrCustomerRequired)
			continue
		}
		updates = append(updates, portsrepo.SaleUpdate{
			Sale:   updated,
			Action: planUdhaarAction(existing, updated),
		})
	}
	if len(failures) > 0 {
		return 0, &apperrors.BulkOperationError{Failures: failures}
	}

	if err := s.saleRepo.BulkUpdateSales(ctx, shopID, updates); err != nil {
		var bulkErr *apperrors.BulkOperationError
		if errors.As(err, &bulkErr) {
			s.LogInfo(ctx, "Bulk update rejected",
				slog.String("shop_id", shopID),
				slog.Int("failed", len(bulkErr.Failures)))
			return 0, err
		}
		s.LogError(ctx, err, "Failed to bulk update sales", slog.String("shop_id", shopID))
		return 0, fmt.Errorf("failed to bulk update sales: %w", err)
	}

	s.LogInfo(ctx, "Sales bulk updated",
		slog.String("shop_id", shopID),
		slog.Int("count", len(updates)))

	s.recordAudit(ctx, userID, "sales.bulk_updated", map[string]any{
		"shopID":  shopID,
		"saleIDs": req.SaleIDs,
		"count":   len(updates),
	})

	return len(updates), nil
}

// DeleteSale hard-deletes a sale and its linked credit record regardless of
// the record's status. The removed sale is captured in the audit trail.
func (s *ledgerService) DeleteSale(ctx context.Context, shopID, saleID string, userID string) error {
	if err := s.AuthorizeUser(ctx, userID, shopID, domain.RoleAdmin); err != nil {
		return err
	}

	removed, err := s.saleRepo.DeleteSale(ctx, shopID, saleID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("sale %s: %w", saleID, apperrors.ErrNotFound)
		}
		s.LogError(ctx, err, "Failed to delete sale", slog.String("sale_id", saleID))
		return fmt.Errorf("failed to delete sale %s: %w", saleID, err)
	}

	s.LogInfo(ctx, "Sale deleted", slog.String("sale_id", saleID), slog.String("shop_id", shopID))

	details := map[string]any{
		"saleID":      removed.SaleID,
		"shopID":      shopID,
		"amount":      removed.Amount.String(),
		"paymentType": string(removed.PaymentType),
	}
	if removed.CustomerID != nil {
		details["customerID"] = *removed.CustomerID
	}
	s.recordAudit(ctx, userID, "sale.deleted", details)
	return nil
}

// DeleteSales batch-deletes sales; IDs that match nothing are skipped and
// zero matches is not an error. Returns the number removed.
func (s *ledgerService) DeleteSales(ctx context.Context, shopID string, saleIDs []string, userID string) (int, error) {
	if err := s.AuthorizeUser(ctx, userID, shopID, domain.RoleAdmin); err != nil {
		return 0, err
	}

	removed, err := s.saleRepo.DeleteSales(ctx, shopID, saleIDs)
	if err != nil {
		s.LogError(ctx, err, "Failed to delete sales batch", slog.String("shop_id", shopID))
		return 0, fmt.Errorf("failed to delete sales: %w", err)
	}

	removedIDs := make([]string, len(removed))
	for i, sale := range removed {
		removedIDs[i] = sale.SaleID
	}

	s.LogInfo(ctx, "Sales batch deleted",
		slog.String("shop_id", shopID),
		slog.Int("count", len(removed)))

	s.recordAudit(ctx, userID, "sales.bulk_deleted", map[string]any{
		"shopID":  shopID,
		"saleIDs": removedIDs,
		"count":   len(removed),
	})
	return len(removed), nil
}

// --- Reads ---

// CalculateBalance derives the customer's outstanding balance from the sales
// log. Positive means the customer owes the shop.
func (s *ledgerService) CalculateBalance(ctx context.Context, shopID, customerID string) (decimal.Decimal, error) {
	balance, err := s.saleRepo.GetBalance(ctx, shopID, customerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to calculate balance", slog.String("customer_id", customerID))
		return decimal.Zero, fmt.Errorf("failed to calculate balance for customer %s: %w", customerID, err)
	}
	return balance, nil
}

// GetSaleByID retrieves one sale within the shop scope.
func (s *ledgerService) GetSaleByID(ctx context.Context, shopID, saleID string) (*domain.Sale, error) {
	sale, err := s.saleRepo.FindSaleByID(ctx, shopID, saleID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find sale", slog.String("sale_id", saleID))
		}
		return nil, fmt.Errorf("failed to find sale %s: %w", saleID, err)
	}
	return sale, nil
}

// ListSales retrieves a filtered, cursor-paginated page of sales.
func (s *ledgerService) ListSales(ctx context.Context, shopID string, filter domain.SaleFilter, limit int, nextToken *string) ([]domain.Sale, *string, error) {
	sales, next, err := s.saleRepo.ListSales(ctx, shopID, filter, limit, nextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list sales", slog.String("shop_id", shopID))
		return nil, nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, next, nil
}

// ListCustomerUdhaars lists a customer's credit records, newest first. With
// openOnly set it returns only OPEN records, oldest first, the order a
// payment would settle them in.
func (s *ledgerService) ListCustomerUdhaars(ctx context.Context, shopID, customerID string, openOnly bool) ([]domain.Udhaar, error) {
	if _, err := s.customerRepo.FindCustomerByID(ctx, shopID, customerID); err != nil {
		return nil, fmt.Errorf("customer %s: %w", customerID, err)
	}
	var records []domain.Udhaar
	var err error
	if openOnly {
		records, err = s.udhaarRepo.ListOpenByCustomer(ctx, shopID, customerID)
	} else {
		records, err = s.udhaarRepo.ListByCustomer(ctx, shopID, customerID)
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to list udhaar records", slog.String("customer_id", customerID))
		return nil, fmt.Errorf("failed to list udhaar records: %w", err)
	}
	return records, nil
}

// summaryPageSize is the page size used when walking the full filtered sale
// set for in-memory aggregation.
const summaryPageSize = 500

// GetSalesSummary aggregates the filtered sale set in memory: revenue counts
// CASH and UPI only, UDHAAR shows up in the per-type totals as money not yet
// received.
func (s *ledgerService) GetSalesSummary(ctx context.Context, shopID string, filter domain.SaleFilter) (*domain.SalesSummary, error) {
	var all []domain.Sale
	var nextToken *string
	for {
		page, next, err := s.saleRepo.ListSales(ctx, shopID, filter, summaryPageSize, nextToken)
		if err != nil {
			s.LogError(ctx, err, "Failed to page sales for summary", slog.String("shop_id", shopID))
			return nil, fmt.Errorf("failed to aggregate sales: %w", err)
		}
		all = append(all, page...)
		if next == nil {
			break
		}
		nextToken = next
	}

	summary := summarizeSales(all, time.Now().UTC())
	return &summary, nil
}

// summarizeSales computes the summary aggregates for a sale set. now anchors
// the trailing 7-day daily breakdown.
func summarizeSales(sales []domain.Sale, now time.Time) domain.SalesSummary {
	revenue := decimal.Zero
	typeTotals := map[domain.PaymentType]*domain.PaymentTypeTotal{}
	customerTotals := map[string]*domain.TopCustomer{}

	today := now.Truncate(24 * time.Hour)
	windowStart := today.AddDate(0, 0, -6)
	daily := make(map[time.Time]*domain.DailySales, 7)
	for i := 0; i < 7; i++ {
		day := windowStart.AddDate(0, 0, i)
		daily[day] = &domain.DailySales{Date: day, Revenue: decimal.Zero}
	}

	for _, sale := range sales {
		if sale.PaymentType.IsSettlement() {
			revenue = revenue.Add(sale.Amount)
		}

		tt, ok := typeTotals[sale.PaymentType]
		if !ok {
			tt = &domain.PaymentTypeTotal{PaymentType: sale.PaymentType, Total: decimal.Zero}
			typeTotals[sale.PaymentType] = tt
		}
		tt.Count++
		tt.Total = tt.Total.Add(sale.Amount)

		if sale.CustomerID != nil {
			ct, ok := customerTotals[*sale.CustomerID]
			if !ok {
				ct = &domain.TopCustomer{CustomerID: *sale.CustomerID, Name: sale.CustomerName, Total: decimal.Zero}
				customerTotals[*sale.CustomerID] = ct
			}
			ct.Total = ct.Total.Add(sale.Amount)
			if ct.Name == "" {
				ct.Name = sale.CustomerName
			}
		}

		day := sale.CreatedAt.UTC().Truncate(24 * time.Hour)
		if ds, ok := daily[day]; ok {
			ds.Count++
			if sale.PaymentType.IsSettlement() {
				ds.Revenue = ds.Revenue.Add(sale.Amount)
			}
		}
	}

	byType := make([]domain.PaymentTypeTotal, 0, len(typeTotals))
	for _, pt := range []domain.PaymentType{domain.PaymentCash, domain.PaymentUPI, domain.PaymentUdhaar} {
		if tt, ok := typeTotals[pt]; ok {
			byType = append(byType, *tt)
		}
	}

	top := make([]domain.TopCustomer, 0, len(customerTotals))
	for _, ct := range customerTotals {
		top = append(top, *ct)
	}
	sort.Slice(top, func(i, j int) bool {
		if !top[i].Total.Equal(top[j].Total) {
			return top[i].Total.GreaterThan(top[j].Total)
		}
		return top[i].CustomerID < top[j].CustomerID
	})
	if len(top) > 5 {
		top = top[:5]
	}

	breakdown := make([]domain.DailySales, 0, 7)
	for i := 0; i < 7; i++ {
		day := windowStart.AddDate(0, 0, i)
		breakdown = append(breakdown, *daily[day])
	}

	return domain.SalesSummary{
		Revenue:          revenue,
		TransactionCount: len(sales),
		ByPaymentType:    byType,
		TopCustomers:     top,
		DailyBreakdown:   breakdown,
	}
}

// --- Side effects ---

// recordAudit writes one best-effort audit entry. The audit sink itself
// swallows failures; this wrapper only guards against a nil service in tests.
func (s *ledgerService) recordAudit(ctx context.Context, userID, action string, details map[string]any) {
	if s.auditSvc == nil {
		return
	}
	s.auditSvc.Record(ctx, userID, action, details)
}

// trackSaleAsync updates the shop's daily stats in a detached goroutine. The
// sale's response never waits on it, a panic in the tracker cannot take the
// request down, and cancellation of the request context does not abort the
// update once the sale is committed.
func (s *ledgerService) trackSaleAsync(ctx context.Context, sale domain.Sale) {
	if s.analyticsSvc == nil {
		return
	}
	bgCtx := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				s.LogError(bgCtx, fmt.Errorf("panic: %v", rec), "Sale tracking panicked",
					slog.String("sale_id", sale.SaleID))
			}
		}()
		trackCtx, cancel := context.WithTimeout(bgCtx, analyticsTimeout)
		defer cancel()
		// Profit is unknown at sale time; cost data is not captured yet.
		if err := s.analyticsSvc.TrackSale(trackCtx, sale.ShopID, sale.Amount, decimal.Zero); err != nil {
			s.LogError(trackCtx, err, "Failed to track sale",
				slog.String("sale_id", sale.SaleID),
				slog.String("shop_id", sale.ShopID))
		}
	}()
}
