package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"agency-billing-backend/internal/auth"
	"agency-billing-backend/internal/config"
	handler "agency-billing-backend/internal/handlers"
	"agency-billing-backend/internal/middleware"
	"agency-billing-backend/internal/repository"
	"agency-billing-backend/internal/services"
	"agency-billing-backend/internal/services/analytics"
	"agency-billing-backend/internal/services/billing"
	"agency-billing-backend/internal/services/catalog"
	"agency-billing-backend/internal/services/payroll"
	"agency-billing-backend/internal/services/users"
)

// Services is the wired application layer.
type Services struct {
	Billing   *billing.BillingService
	Analytics *analytics.AnalyticsService
	Catalog   *catalog.CatalogService
	Users     *users.UserService
	Payroll   *payroll.PayrollService
}

func NewServices(db *gorm.DB, cfg *config.Config, log *logrus.Logger, clock services.Clock) *Services {
	clientRepo := repository.NewClientRepository(db)
	domainRepo := repository.NewDomainRepository(db)
	hostingRepo := repository.NewHostingServiceRepository(db)
	sslRepo := repository.NewSslCertificateRepository(db)
	billRepo := repository.NewBillRepository(db)
	userRepo := repository.NewUserRepository(db)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	return &Services{
		Billing:   billing.NewBillingService(billRepo, clientRepo, domainRepo, hostingRepo, sslRepo, log, clock),
		Analytics: analytics.NewAnalyticsService(billRepo, clientRepo, domainRepo, hostingRepo, sslRepo, clock),
		Catalog:   catalog.NewCatalogService(clientRepo, domainRepo, hostingRepo, sslRepo, log, clock),
		Users:     users.NewUserService(userRepo, billRepo, tokens, log),
		Payroll: payroll.NewPayrollService(
			repository.NewEmployeeRepository(db),
			repository.NewPaySalaryRepository(db),
			log,
		),
	}
}

func RegisterRoutes(r *gin.Engine, svc *Services, log *logrus.Logger) {
	billHandler := handler.NewBillHandler(svc.Billing, log)
	catalogHandler := handler.NewCatalogHandler(svc.Catalog, log)
	userHandler := handler.NewUserHandler(svc.Users, log)
	payrollHandler := handler.NewPayrollHandler(svc.Payroll, log)
	reportHandler := handler.NewReportHandler(svc.Analytics, log)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api.POST("/auth/login", userHandler.Login)

	secured := api.Group("")
	secured.Use(middleware.RequireAuth(svc.Users))

	secured.GET("/auth/me", userHandler.Me)
	secured.GET("/dashboard", reportHandler.Dashboard)

	reports := secured.Group("/reports")
	{
		reports.GET("/billing", reportHandler.BillingReport)
		reports.GET("/billing/export", reportHandler.ExportBillingReport)
	}

	clients := secured.Group("/clients")
	{
		clients.GET("", catalogHandler.ListClients)
		clients.POST("", catalogHandler.CreateClient)
		clients.GET("/:id", catalogHandler.GetClient)
		clients.PUT("/:id", catalogHandler.UpdateClient)
		clients.DELETE("/:id", catalogHandler.DeleteClient)
	}

	domains := secured.Group("/domains")
	{
		domains.GET("", catalogHandler.ListDomains)
		domains.POST("", catalogHandler.CreateDomain)
		domains.GET("/:id", catalogHandler.GetDomain)
		domains.PUT("/:id", catalogHandler.UpdateDomain)
		domains.DELETE("/:id", catalogHandler.DeleteDomain)
		domains.PATCH("/:id/approve-level1", catalogHandler.ApproveLevel1(catalog.KindDomain))
		domains.PATCH("/:id/approve-level2", catalogHandler.ApproveLevel2(catalog.KindDomain))
	}

	ssl := secured.Group("/ssl-certificates")
	{
		ssl.GET("", catalogHandler.ListSsl)
		ssl.POST("", catalogHandler.CreateSsl)
		ssl.GET("/:id", catalogHandler.GetSsl)
		ssl.PUT("/:id", catalogHandler.UpdateSsl)
		ssl.DELETE("/:id", catalogHandler.DeleteSsl)
		ssl.PATCH("/:id/approve-level1", catalogHandler.ApproveLevel1(catalog.KindSsl))
		ssl.PATCH("/:id/approve-level2", catalogHandler.ApproveLevel2(catalog.KindSsl))
	}

	hosting := secured.Group("/hosting-services")
	{
		hosting.GET("", catalogHandler.ListHosting)
		hosting.POST("", catalogHandler.CreateHosting)
		hosting.GET("/:id", catalogHandler.GetHosting)
		hosting.PUT("/:id", catalogHandler.UpdateHosting)
		hosting.DELETE("/:id", catalogHandler.DeleteHosting)
		hosting.PATCH("/:id/approve-level1", catalogHandler.ApproveLevel1(catalog.KindHosting))
		hosting.PATCH("/:id/approve-level2", catalogHandler.ApproveLevel2(catalog.KindHosting))
	}

	bills := secured.Group("/bills")
	{
		bills.GET("", billHandler.List)
		bills.POST("", billHandler.Create)
		bills.GET("/:id", billHandler.Get)
		bills.PUT("/:id", billHandler.Update)
		bills.DELETE("/:id", billHandler.Delete)
		bills.PATCH("/:id/approve", billHandler.Approve)
		bills.PATCH("/:id/payment", billHandler.RecordPayment)
		bills.PATCH("/:id/cancel", billHandler.Cancel)
		bills.GET("/:id/audit", billHandler.AuditTrail)
	}

	userMgmt := secured.Group("/user-management")
	{
		userMgmt.GET("", userHandler.List)
		userMgmt.POST("", userHandler.Create)
		userMgmt.GET("/:id", userHandler.Get)
		userMgmt.PUT("/:id", userHandler.Update)
		userMgmt.DELETE("/:id", userHandler.Delete)
		userMgmt.PATCH("/:id/toggle-status", userHandler.ToggleStatus)
	}

	employees := secured.Group("/employees")
	{
		employees.GET("", payrollHandler.ListEmployees)
		employees.POST("", payrollHandler.CreateEmployee)
		employees.GET("/:id", payrollHandler.GetEmployee)
		employees.PUT("/:id", payrollHandler.UpdateEmployee)
		employees.DELETE("/:id", payrollHandler.DeleteEmployee)
	}

	pay := secured.Group("/payroll")
	{
		pay.GET("", payrollHandler.ListSalaries)
		pay.POST("", payrollHandler.CreateSalary)
		pay.GET("/report", payrollHandler.Report)
		pay.GET("/report/export", payrollHandler.ExportReport)
		pay.GET("/:id", payrollHandler.GetSalary)
		pay.PUT("/:id", payrollHandler.UpdateSalary)
		pay.DELETE("/:id", payrollHandler.DeleteSalary)
	}
}
