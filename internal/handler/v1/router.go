package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dentavia/dentavia/internal/config"
	"github.com/dentavia/dentavia/internal/domain"
	"github.com/dentavia/dentavia/internal/service"
	"github.com/dentavia/dentavia/pkg/auth"
	"github.com/dentavia/dentavia/pkg/metrics"
)

type Handlers struct {
	Auth          *AuthHandler
	Appointments  *AppointmentHandler
	Fiches        *FicheHandler
	Delegations   *DelegationHandler
	Notifications *NotificationHandler
	Prescriptions *PrescriptionHandler
	Messages      *MessageHandler
}

func NewRouter(cfg *config.Config, handlers Handlers, jwtManager *auth.JWTManager, audits *service.AuditService, collector *metrics.Collector) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), Observe(collector))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api/v1")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", handlers.Auth.Register)
		authRoutes.POST("/login", handlers.Auth.Login)
		authRoutes.POST("/refresh", handlers.Auth.Refresh)
		authRoutes.POST("/password", Authenticated(jwtManager), handlers.Auth.ChangePassword)
	}

	authed := api.Group("", Authenticated(jwtManager), Audited(audits))

	appts := authed.Group("/appointments")
	{
		appts.POST("", handlers.Appointments.Book)
		appts.POST("/unregistered",
			RequireRole(domain.RoleDoctor, domain.RoleSecretary),
			handlers.Appointments.BookUnregistered)
		appts.GET("", handlers.Appointments.List)
		appts.GET("/:appointmentID", handlers.Appointments.Get)
		appts.PATCH("/:appointmentID/status", handlers.Appointments.UpdateStatus)
		appts.PATCH("/:appointmentID/schedule",
			RequireRole(domain.RoleDoctor, domain.RoleSecretary),
			handlers.Appointments.Reschedule)
		appts.PATCH("/:appointmentID/reschedule",
			RequireRole(domain.RolePatient),
			handlers.Appointments.RescheduleByPatient)

		appts.GET("/:appointmentID/fiche", handlers.Fiches.Get)
		appts.PUT("/:appointmentID/fiche", handlers.Fiches.Save)
		appts.GET("/:appointmentID/interventions", handlers.Fiches.ListInterventions)
		appts.POST("/:appointmentID/interventions",
			RequireRole(domain.RoleDoctor),
			handlers.Fiches.AddIntervention)
		appts.POST("/:appointmentID/documents", handlers.Fiches.AttachDocument)
		appts.GET("/:appointmentID/documents/:documentID", handlers.Fiches.DownloadDocument)

		appts.GET("/:appointmentID/prescriptions", handlers.Prescriptions.ListForAppointment)
		appts.POST("/:appointmentID/prescriptions",
			RequireRole(domain.RoleDoctor),
			handlers.Prescriptions.Create)
	}

	prescriptions := authed.Group("/prescriptions")
	{
		prescriptions.GET("",
			RequireRole(domain.RolePatient),
			handlers.Prescriptions.ListMine)
		prescriptions.GET("/:prescriptionID", handlers.Prescriptions.Get)
		prescriptions.DELETE("/:prescriptionID",
			RequireRole(domain.RoleDoctor),
			handlers.Prescriptions.Cancel)
	}

	messages := authed.Group("/messages")
	{
		messages.POST("", handlers.Messages.Send)
		messages.GET("/unread-count", handlers.Messages.UnreadCount)
		messages.GET("/conversations/:userID", handlers.Messages.Conversation)
		messages.PATCH("/:messageID", handlers.Messages.Edit)
		messages.DELETE("/:messageID", handlers.Messages.Delete)
	}

	delegation := authed.Group("/delegation")
	{
		delegation.POST("/apply",
			RequireRole(domain.RoleSecretary),
			handlers.Delegations.Apply)
		delegation.GET("/doctor",
			RequireRole(domain.RoleSecretary),
			handlers.Delegations.AssignedDoctor)

		delegation.GET("/applications",
			RequireRole(domain.RoleDoctor),
			handlers.Delegations.PendingApplications)
		delegation.POST("/applications/:secretaryID/decision",
			RequireRole(domain.RoleDoctor),
			handlers.Delegations.Decide)
		delegation.GET("/secretaries",
			RequireRole(domain.RoleDoctor),
			handlers.Delegations.AssignedSecretaries)
		delegation.POST("/secretaries/:secretaryID",
			RequireRole(domain.RoleDoctor),
			handlers.Delegations.AssignDirect)
		delegation.DELETE("/secretaries/:secretaryID",
			RequireRole(domain.RoleDoctor),
			handlers.Delegations.Remove)
	}

	notifications := authed.Group("/notifications")
	{
		notifications.GET("", handlers.Notifications.List)
		notifications.GET("/unread-count", handlers.Notifications.UnreadCount)
		notifications.PATCH("/:notificationID/read", handlers.Notifications.MarkRead)
		notifications.PATCH("/read-all", handlers.Notifications.MarkAllRead)
	}

	return r
}
