package sales

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/fooderp/backend/internal/domain/catalog"
	"github.com/fooderp/backend/internal/domain/partner"
	"github.com/fooderp/backend/internal/domain/sales"
	"github.com/fooderp/backend/internal/domain/shared"
	"github.com/fooderp/backend/internal/domain/shared/valueobject"
	"github.com/fooderp/backend/internal/infrastructure/csvimport"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Columns the header must carry. A blank unit_price value in a row falls
// back to the product's standard price; the column itself is mandatory.
var (
	importRequiredColumns = []string{"customer_code", "product_code", "quantity", "unit_price"}

	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ImportService turns CSV content into draft sales orders. The flow has two
// steps: PreviewCSV parses and validates the file without writing anything,
// CreateImportedOrders persists one order per customer group from a preview.
type ImportService struct {
	orderRepo     sales.SalesOrderRepository
	customerRepo  partner.CustomerRepository
	productRepo   catalog.ProductRepository
	importRecords sales.ImportRecordRepository
	logger        *zap.Logger
}

// NewImportService creates a new ImportService. A nil importRecords
// repository disables the audit trail; commits still work.
func NewImportService(
	orderRepo sales.SalesOrderRepository,
	customerRepo partner.CustomerRepository,
	productRepo catalog.ProductRepository,
	importRecords sales.ImportRecordRepository,
	logger *zap.Logger,
) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		orderRepo:     orderRepo,
		customerRepo:  customerRepo,
		productRepo:   productRepo,
		importRecords: importRecords,
		logger:        logger,
	}
}

// PreviewCSV parses CSV content and validates every data row. Structural
// problems with the file itself (empty content, missing header, missing
// required columns) abort with an error; per-row data problems mark the row
// invalid and never fail the whole import. A row fails on its first problem;
// later checks on that row are not run.
func (s *ImportService) PreviewCSV(ctx context.Context, tenantID uuid.UUID, csvContent string) (*ImportPreviewResult, error) {
	parser, err := csvimport.ParseFromString(csvContent)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}

	if missing := parser.MissingColumns(importRequiredColumns); len(missing) > 0 {
		// A first line carrying neither identifying column is data, not a header.
		if !parser.HasColumn("customer_code") && !parser.HasColumn("product_code") {
			return nil, csvimport.ErrMissingHeader
		}
		return nil, csvimport.NewMissingColumnsError(missing)
	}

	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, err
	}

	customerCache := make(map[string]*partner.Customer)
	productCache := make(map[string]*catalog.Product)

	result := &ImportPreviewResult{
		Rows:           make([]ValidatedRow, 0, len(rows)),
		CustomerGroups: make(map[string][]ValidatedRow),
		Errors:         make([]ImportError, 0),
		Defaults: ImportDefaults{
			Status:            sales.OrderStatusDraft.String(),
			AllergenValidated: false,
			OrderDate:         time.Now().Format("2006-01-02"),
		},
	}

	for _, row := range rows {
		validated, importErr := s.validateRow(ctx, tenantID, row, customerCache, productCache)
		if importErr != nil {
			result.Errors = append(result.Errors, *importErr)
		}
		result.Rows = append(result.Rows, *validated)

		if validated.Valid {
			result.CustomerGroups[validated.CustomerCode] = append(result.CustomerGroups[validated.CustomerCode], *validated)
			result.ValidCount++
		} else {
			result.InvalidCount++
		}
	}

	result.OrdersToCreate = len(result.CustomerGroups)
	result.LinesToCreate = result.ValidCount

	s.logger.Info("CSV import preview completed",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("valid_rows", result.ValidCount),
		zap.Int("invalid_rows", result.InvalidCount),
		zap.Int("orders_to_create", result.OrdersToCreate),
	)

	return result, nil
}

// validateRow checks one data row. A non-nil ImportError is returned
// whenever the row is invalid; lookup failures against the database abort
// the whole preview instead.
func (s *ImportService) validateRow(
	ctx context.Context,
	tenantID uuid.UUID,
	row *csvimport.Row,
	customerCache map[string]*partner.Customer,
	productCache map[string]*catalog.Product,
) (*ValidatedRow, *ImportError) {
	validated := &ValidatedRow{
		RowNumber:            row.RowNumber,
		CustomerCode:         row.Get("customer_code"),
		ProductCode:          row.Get("product_code"),
		CustomerPO:           optionalField(row, "customer_po"),
		PromisedShipDate:     optionalField(row, "promised_ship_date"),
		RequiredDeliveryDate: optionalField(row, "required_delivery_date"),
		Notes:                optionalField(row, "notes"),
	}

	reject := func(msg string) (*ValidatedRow, *ImportError) {
		validated.Valid = false
		validated.Error = msg
		return validated, &ImportError{Row: row.RowNumber, Error: msg}
	}

	if validated.CustomerCode == "" {
		return reject("Customer code is required")
	}
	if validated.ProductCode == "" {
		return reject("Product code is required")
	}
	if row.Get("quantity") == "" {
		return reject("Quantity must be a number")
	}

	customer, ok := customerCache[validated.CustomerCode]
	if !ok {
		var err error
		customer, err = s.customerRepo.FindByCode(ctx, tenantID, validated.CustomerCode)
		if err != nil {
			validated.Valid = false
			validated.Error = err.Error()
			return validated, &ImportError{Row: row.RowNumber, Error: err.Error()}
		}
		customerCache[validated.CustomerCode] = customer
	}
	if customer == nil {
		msg := fmt.Sprintf("Customer %s not found", validated.CustomerCode)
		validated.Valid = false
		validated.Error = msg
		return validated, &ImportError{Row: row.RowNumber, CustomerCode: validated.CustomerCode, Error: msg}
	}

	product, ok := productCache[validated.ProductCode]
	if !ok {
		var err error
		product, err = s.productRepo.FindByCode(ctx, tenantID, validated.ProductCode)
		if err != nil {
			validated.Valid = false
			validated.Error = err.Error()
			return validated, &ImportError{Row: row.RowNumber, Error: err.Error()}
		}
		productCache[validated.ProductCode] = product
	}
	if product == nil {
		msg := fmt.Sprintf("Product %s not found", validated.ProductCode)
		validated.Valid = false
		validated.Error = msg
		return validated, &ImportError{Row: row.RowNumber, ProductCode: validated.ProductCode, Error: msg}
	}

	quantity, err := decimal.NewFromString(row.Get("quantity"))
	if err != nil {
		return reject("Quantity must be a number")
	}
	validated.Quantity = quantity
	if quantity.LessThanOrEqual(decimal.Zero) {
		return reject("Quantity must be greater than zero")
	}

	// Blank unit_price falls back to the standard price. An explicit 0 stays
	// 0 for free-of-charge lines.
	rawPrice := row.Get("unit_price")
	if rawPrice == "" {
		validated.UnitPrice = product.StandardPrice
	} else {
		unitPrice, err := decimal.NewFromString(rawPrice)
		if err != nil {
			return reject("Unit price must be a number")
		}
		validated.UnitPrice = unitPrice
		if unitPrice.IsNegative() {
			return reject("Unit price cannot be negative")
		}
	}

	if validated.PromisedShipDate != nil && !isValidISODate(*validated.PromisedShipDate) {
		return reject("Invalid date format (use YYYY-MM-DD)")
	}
	if validated.RequiredDeliveryDate != nil && !isValidISODate(*validated.RequiredDeliveryDate) {
		return reject("Invalid date format (use YYYY-MM-DD)")
	}

	validated.Valid = true
	validated.CustomerID = &customer.ID
	validated.ProductID = &product.ID
	validated.ShippingAddressID = customer.DefaultShippingAddressID
	return validated, nil
}

// CreateImportedOrders persists one draft order per customer group from a
// preview. Groups succeed or fail independently; a failed group never rolls
// back orders already created for other customers.
func (s *ImportService) CreateImportedOrders(ctx context.Context, tenantID uuid.UUID, preview *ImportPreviewResult) (*CreateImportedOrdersResult, error) {
	result := &CreateImportedOrdersResult{
		CreatedOrders: make([]SalesOrderResponse, 0, len(preview.CustomerGroups)),
		FailedGroups:  make([]FailedImportGroup, 0),
	}

	codes := make([]string, 0, len(preview.CustomerGroups))
	for code := range preview.CustomerGroups {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	customerCache := make(map[string]*partner.Customer)
	productCache := make(map[string]*catalog.Product)

	orderNumbers := make([]string, 0, len(codes))
	for _, code := range codes {
		rows := preview.CustomerGroups[code]
		order, err := s.createOrderForGroup(ctx, tenantID, rows, customerCache, productCache)
		if err != nil {
			s.logger.Warn("failed to create imported order",
				zap.String("tenant_id", tenantID.String()),
				zap.String("customer_code", code),
				zap.Error(err),
			)
			result.FailedGroups = append(result.FailedGroups, FailedImportGroup{
				CustomerCode: code,
				Error:        err.Error(),
			})
			continue
		}
		orderNumbers = append(orderNumbers, order.OrderNumber)
		result.CreatedOrders = append(result.CreatedOrders, ToSalesOrderResponse(order))
	}

	s.recordImport(ctx, tenantID, preview, orderNumbers, result)

	s.logger.Info("imported orders created",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("created", len(result.CreatedOrders)),
		zap.Int("failed", len(result.FailedGroups)),
	)

	return result, nil
}

// recordImport writes the audit record for a commit. A failure here is
// logged but never fails the import itself; the orders are already saved.
func (s *ImportService) recordImport(ctx context.Context, tenantID uuid.UUID, preview *ImportPreviewResult, orderNumbers []string, result *CreateImportedOrdersResult) {
	if s.importRecords == nil {
		return
	}

	record, err := sales.NewImportRecord(tenantID, len(preview.Rows), preview.ValidCount, preview.InvalidCount)
	if err != nil {
		s.logger.Warn("failed to build import record", zap.Error(err))
		return
	}

	failures := make([]sales.ImportFailure, 0, len(result.FailedGroups))
	for _, group := range result.FailedGroups {
		failures = append(failures, sales.ImportFailure{
			CustomerCode: group.CustomerCode,
			Error:        group.Error,
		})
	}
	if err := record.Complete(orderNumbers, failures); err != nil {
		s.logger.Warn("failed to finalize import record", zap.Error(err))
		return
	}

	if err := s.importRecords.Save(ctx, record); err != nil {
		s.logger.Warn("failed to save import record",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
		return
	}
	result.ImportRecordID = &record.ID
}

// ListImportRecords returns the tenant's import audit trail, newest first
func (s *ImportService) ListImportRecords(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]ImportRecordResponse, int64, error) {
	if s.importRecords == nil {
		return []ImportRecordResponse{}, 0, nil
	}

	records, err := s.importRecords.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.importRecords.Count(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ImportRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, ToImportRecordResponse(record))
	}
	return responses, total, nil
}

// GetImportRecord returns one import record by ID
func (s *ImportService) GetImportRecord(ctx context.Context, tenantID, id uuid.UUID) (*ImportRecordResponse, error) {
	if s.importRecords == nil {
		return nil, shared.ErrNotFound
	}
	record, err := s.importRecords.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	response := ToImportRecordResponse(record)
	return &response, nil
}

// createOrderForGroup builds and saves one order from a customer's rows.
// Header fields come from the group's first row. The preview payload comes
// back from the client, so customer and product codes are resolved again
// against the tenant here; resolved IDs carried in the payload are ignored.
func (s *ImportService) createOrderForGroup(
	ctx context.Context,
	tenantID uuid.UUID,
	rows []ValidatedRow,
	customerCache map[string]*partner.Customer,
	productCache map[string]*catalog.Product,
) (*sales.SalesOrder, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty customer group")
	}
	first := rows[0]

	customer, err := s.resolveCustomer(ctx, tenantID, first.CustomerCode, customerCache)
	if err != nil {
		return nil, err
	}

	orderDate := time.Now()
	orderNumber, err := s.orderRepo.NextOrderNumber(ctx, tenantID, orderDate)
	if err != nil {
		return nil, err
	}

	order, err := sales.NewSalesOrder(tenantID, orderNumber, customer.ID, orderDate)
	if err != nil {
		return nil, err
	}
	order.SetShippingAddress(customer.DefaultShippingAddressID)
	order.SetCustomerPO(first.CustomerPO)

	if first.PromisedShipDate != nil {
		d, err := time.Parse("2006-01-02", *first.PromisedShipDate)
		if err != nil {
			return nil, err
		}
		order.SetPromisedShipDate(&d)
	}
	if first.RequiredDeliveryDate != nil {
		d, err := time.Parse("2006-01-02", *first.RequiredDeliveryDate)
		if err != nil {
			return nil, err
		}
		if err := order.SetRequiredDeliveryDate(&d); err != nil {
			return nil, err
		}
	}

	for _, row := range rows {
		product, err := s.resolveProduct(ctx, tenantID, row.ProductCode, productCache)
		if err != nil {
			return nil, err
		}
		line, err := order.AddLine(product.ID, row.Quantity, valueobject.NewMoneyUSD(row.UnitPrice))
		if err != nil {
			return nil, err
		}
		line.SetNotes(row.Notes)
		if row.RequiredDeliveryDate != nil && first.RequiredDeliveryDate != nil && *row.RequiredDeliveryDate != *first.RequiredDeliveryDate {
			// Divergent per-row dates are kept as line notes rather than
			// silently dropped.
			note := fmt.Sprintf("Requested delivery: %s", *row.RequiredDeliveryDate)
			if row.Notes != nil && *row.Notes != "" {
				note = *row.Notes + "; " + note
			}
			line.SetNotes(&note)
		}
	}

	if err := saveNewOrder(ctx, s.orderRepo, order, orderDate); err != nil {
		return nil, err
	}
	return order, nil
}

// resolveCustomer looks a customer up by code within the tenant, caching both
// hits and misses for the duration of one commit
func (s *ImportService) resolveCustomer(ctx context.Context, tenantID uuid.UUID, code string, cache map[string]*partner.Customer) (*partner.Customer, error) {
	customer, ok := cache[code]
	if !ok {
		var err error
		customer, err = s.customerRepo.FindByCode(ctx, tenantID, code)
		if err != nil {
			return nil, err
		}
		cache[code] = customer
	}
	if customer == nil {
		return nil, fmt.Errorf("Customer %s not found", code)
	}
	return customer, nil
}

// resolveProduct looks a product up by code within the tenant, caching both
// hits and misses for the duration of one commit
func (s *ImportService) resolveProduct(ctx context.Context, tenantID uuid.UUID, code string, cache map[string]*catalog.Product) (*catalog.Product, error) {
	product, ok := cache[code]
	if !ok {
		var err error
		product, err = s.productRepo.FindByCode(ctx, tenantID, code)
		if err != nil {
			return nil, err
		}
		cache[code] = product
	}
	if product == nil {
		return nil, fmt.Errorf("Product %s not found", code)
	}
	return product, nil
}

func optionalField(row *csvimport.Row, column string) *string {
	value := row.Get(column)
	if value == "" {
		return nil
	}
	return &value
}

// isValidISODate accepts dates in strict YYYY-MM-DD form
func isValidISODate(value string) bool {
	if !isoDatePattern.MatchString(value) {
		return false
	}
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}
