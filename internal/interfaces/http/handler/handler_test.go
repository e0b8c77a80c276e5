package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/schoolms/backend/internal/application/billing"
	feesapp "github.com/schoolms/backend/internal/application/fees"
	"github.com/schoolms/backend/internal/domain/billing"
	"github.com/schoolms/backend/internal/domain/fees"
	"github.com/schoolms/backend/internal/domain/school"
	"github.com/schoolms/backend/internal/domain/shared/valueobject"
	"github.com/schoolms/backend/internal/infrastructure/persistence"
	"github.com/schoolms/backend/internal/infrastructure/persistence/models"
	"github.com/schoolms/backend/internal/interfaces/http/middleware"
	"github.com/schoolms/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testServer bundles an API engine with direct repository access for seeding
type testServer struct {
	engine *gin.Engine
	db     *persistence.Database

	categoryRepo   *persistence.GormFeeCategoryRepository
	structureRepo  *persistence.GormFeeStructureRepository
	studentFeeRepo *persistence.GormStudentFeeRepository
	invoiceRepo    *persistence.GormInvoiceRepository
	paymentRepo    *persistence.GormPaymentRepository
}

func setupTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.RegisterValidators())

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(
		&models.AcademicYearModel{},
		&models.TermModel{},
		&models.ClassModel{},
		&models.StudentModel{},
		&models.FeeCategoryModel{},
		&models.FeeStructureModel{},
		&models.StudentFeeModel{},
		&models.InvoiceModel{},
		&models.InvoiceItemModel{},
		&models.PaymentModel{},
	))

	db := persistence.NewDatabaseFromGorm(gormDB)
	logger := zap.NewNop()

	categoryRepo := persistence.NewGormFeeCategoryRepository(db)
	structureRepo := persistence.NewGormFeeStructureRepository(db)
	studentFeeRepo := persistence.NewGormStudentFeeRepository(db)
	invoiceRepo := persistence.NewGormInvoiceRepository(db)
	paymentRepo := persistence.NewGormPaymentRepository(db)
	studentRepo := persistence.NewGormStudentRepository(db)
	yearRepo := persistence.NewGormAcademicYearRepository(db)
	termRepo := persistence.NewGormTermRepository(db)
	classRepo := persistence.NewGormClassRepository(db)

	catalogService := feesapp.NewCatalogService(categoryRepo, structureRepo, yearRepo, termRepo, classRepo, logger)
	assignmentService := feesapp.NewAssignmentService(structureRepo, studentFeeRepo, studentRepo, logger)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, paymentRepo, studentFeeRepo, studentRepo, logger)
	paymentService := billingapp.NewPaymentService(paymentRepo, invoiceRepo, studentRepo, nil, logger)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.NewRouter(engine).
		Register(NewCatalogHandler(catalogService)).
		Register(NewAssignmentHandler(assignmentService)).
		Register(NewInvoiceHandler(invoiceService, 30)).
		Register(NewPaymentHandler(paymentService)).
		Register(NewSystemHandler(db)).
		Setup()

	return &testServer{
		engine:         engine,
		db:             db,
		categoryRepo:   categoryRepo,
		structureRepo:  structureRepo,
		studentFeeRepo: studentFeeRepo,
		invoiceRepo:    invoiceRepo,
		paymentRepo:    paymentRepo,
	}
}

func (ts *testServer) request(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := decodeResponse(t, w)
	errInfo, ok := resp["error"].(map[string]any)
	require.True(t, ok, "response has no error object: %s", w.Body.String())
	code, _ := errInfo["code"].(string)
	return code
}

func moneyFromString(t *testing.T, value string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyFromString(value)
	require.NoError(t, err)
	return m
}

// seedStudent inserts an enrolled student row directly
func (ts *testServer) seedStudent(t *testing.T, admissionNumber string) *school.Student {
	t.Helper()

	model := &models.StudentModel{
		AdmissionNumber: admissionNumber,
		FirstName:       "Amina",
		LastName:        "Okafor",
		ClassID:         uuid.New(),
		Status:          school.StudentStatusActive,
	}
	model.ID = uuid.New()
	model.CreatedAt = time.Now()
	model.UpdatedAt = time.Now()
	require.NoError(t, ts.db.DB().Create(model).Error)

	return model.ToDomain()
}

// seedTermContext inserts an academic year, term and class and returns their ids
func (ts *testServer) seedTermContext(t *testing.T) (yearID, termID, classID uuid.UUID) {
	t.Helper()

	year := &models.AcademicYearModel{
		Name:      "2026/2027 " + uuid.NewString()[:8],
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(1, 0, 0),
	}
	year.ID = uuid.New()
	require.NoError(t, ts.db.DB().Create(year).Error)

	term := &models.TermModel{
		AcademicYearID: year.ID,
		Name:           "Term 1",
		StartDate:      time.Now(),
		EndDate:        time.Now().AddDate(0, 4, 0),
	}
	term.ID = uuid.New()
	require.NoError(t, ts.db.DB().Create(term).Error)

	class := &models.ClassModel{Name: "Grade 5", Section: uuid.NewString()[:8]}
	class.ID = uuid.New()
	require.NoError(t, ts.db.DB().Create(class).Error)

	return year.ID, term.ID, class.ID
}

// seedStructure creates and persists a fee structure for a fresh term context
func (ts *testServer) seedStructure(t *testing.T, amount string) *fees.FeeStructure {
	t.Helper()

	category, err := fees.NewFeeCategory("Tuition "+uuid.NewString()[:8], "")
	require.NoError(t, err)
	require.NoError(t, ts.categoryRepo.Save(context.Background(), category))

	yearID, termID, classID := ts.seedTermContext(t)
	structure, err := fees.NewFeeStructure(category.ID, yearID, termID, classID, moneyFromString(t, amount), true, nil)
	require.NoError(t, err)
	require.NoError(t, ts.structureRepo.Save(context.Background(), structure))

	return structure
}

// seedOutstandingFee creates an uninvoiced obligation for the student
func (ts *testServer) seedOutstandingFee(t *testing.T, studentID uuid.UUID, amount string) *fees.StudentFee {
	t.Helper()

	structure := ts.seedStructure(t, amount)
	fee, err := fees.NewStudentFee(studentID, structure, valueobject.NewMoneyFromInt(0), "")
	require.NoError(t, err)

	created, err := ts.studentFeeRepo.CreateIfAbsent(context.Background(), fee)
	require.NoError(t, err)
	require.True(t, created)

	return fee
}

// seedInvoice generates an invoice over a fresh obligation via the service path
func (ts *testServer) seedInvoice(t *testing.T, studentID uuid.UUID, amount string) *billing.Invoice {
	t.Helper()

	fee := ts.seedOutstandingFee(t, studentID, amount)

	number, err := ts.invoiceRepo.NextInvoiceNumber(context.Background())
	require.NoError(t, err)

	lines := []billing.InvoiceLine{{StudentFeeID: fee.ID, Amount: fee.GetNetAmountMoney()}}
	invoice, err := billing.NewInvoice(number, studentID, time.Now(), time.Now().AddDate(0, 1, 0), lines, "")
	require.NoError(t, err)
	require.NoError(t, ts.invoiceRepo.Save(context.Background(), invoice))

	require.NoError(t, fee.AttachToInvoice(invoice.ID))
	require.NoError(t, ts.studentFeeRepo.Save(context.Background(), fee))

	return invoice
}
