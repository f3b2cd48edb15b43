package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yeremiapane/site-engineer-app/controllers"
	"github.com/yeremiapane/site-engineer-app/hub"
	"github.com/yeremiapane/site-engineer-app/middlewares"
	"github.com/yeremiapane/site-engineer-app/services"
)

// Deps is everything the HTTP layer needs from main.
type Deps struct {
	Auth      *services.AuthService
	Scope     *services.ScopeService
	Directory *services.DirectoryService
	Reports   *services.ReportService
	CheckIns  *services.CheckInService
	Leaves    *services.LeaveService
	Dashboard *services.DashboardService
	Hub       *hub.Hub
	Store     controllers.Pinger

	LoginLimiter *middlewares.RateLimiter
	// GlobalLimit is a ulule rate such as "300-M"; empty disables it.
	GlobalLimit  string
	CORSOrigin   string
	SecureCookie bool
}

func SetupRouter(d Deps) (*gin.Engine, error) {
	r := gin.New()

	r.Use(middlewares.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders(d.SecureCookie))
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigin))
	if d.GlobalLimit != "" {
		limit, err := middlewares.GlobalRateLimit(d.GlobalLimit)
		if err != nil {
			return nil, err
		}
		r.Use(limit)
	}

	userCtrl := controllers.NewUserController(d.Auth, d.Scope, d.Directory, d.SecureCookie)
	clientCtrl := controllers.NewClientController(d.Scope, d.Directory)
	assignmentCtrl := controllers.NewAssignmentController(d.Scope, d.Directory)
	reportCtrl := controllers.NewReportController(d.Scope, d.Reports)
	checkInCtrl := controllers.NewCheckInController(d.Scope, d.CheckIns)
	leaveCtrl := controllers.NewLeaveController(d.Scope, d.Leaves)
	adminCtrl := controllers.NewAdminController(d.Dashboard, d.Directory)
	liveCtrl := controllers.NewLiveController(d.Hub, d.CORSOrigin)
	healthCtrl := controllers.NewHealthController(d.Store)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/health", healthCtrl.Health)
	r.GET("/ready", healthCtrl.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	login := r.Group("/auth")
	if d.LoginLimiter != nil {
		login.Use(d.LoginLimiter.RateLimit())
	}
	login.POST("/login", userCtrl.Login)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.SessionAuth(d.Auth))
	staff := middlewares.StaffOnly()

	auth.POST("/auth/logout", userCtrl.Logout)
	auth.GET("/auth/me", userCtrl.Me)

	// PROFILES
	auth.GET("/profiles", userCtrl.ListProfiles)
	auth.POST("/profiles", staff, userCtrl.CreateProfile)
	auth.GET("/profiles/:id", userCtrl.GetProfile)
	auth.PATCH("/profiles/:id", userCtrl.UpdateProfile)
	auth.GET("/engineers", userCtrl.ListEngineers)
	auth.POST("/engineers", staff, userCtrl.CreateEngineer)

	// CLIENTS & SITES
	auth.GET("/clients", clientCtrl.ListClients)
	auth.POST("/clients", staff, clientCtrl.CreateClient)
	auth.GET("/clients/:id", clientCtrl.GetClient)
	auth.PATCH("/clients/:id", staff, clientCtrl.UpdateClient)
	auth.GET("/sites", clientCtrl.ListSites)
	auth.POST("/sites", staff, clientCtrl.CreateSite)
	auth.GET("/sites/:id", clientCtrl.GetSite)

	// ASSIGNMENTS
	auth.GET("/assignments", assignmentCtrl.ListAssignments)
	auth.POST("/assignments", staff, assignmentCtrl.CreateAssignment)
	auth.PATCH("/assignments/:id", staff, assignmentCtrl.UpdateAssignment)

	// DAILY REPORTS
	auth.GET("/reports", reportCtrl.ListReports)
	auth.POST("/reports", reportCtrl.SubmitReport)
	auth.GET("/reports/export", reportCtrl.ExportReports)
	auth.GET("/reports/:id", reportCtrl.GetReport)
	auth.POST("/reports/:id/send-email", reportCtrl.SendReportEmail)

	// CHECK-INS
	auth.GET("/check-ins", checkInCtrl.ListCheckIns)
	auth.POST("/check-ins", checkInCtrl.CheckIn)
	auth.GET("/check-ins/:id", checkInCtrl.GetCheckIn)
	auth.POST("/check-ins/:id/checkout", checkInCtrl.CheckOut)

	// LEAVE REQUESTS
	auth.GET("/leaves", leaveCtrl.ListLeaves)
	auth.POST("/leaves", leaveCtrl.RequestLeave)
	auth.GET("/leaves/:id", leaveCtrl.GetLeave)
	auth.POST("/leaves/:id/approve", staff, leaveCtrl.ApproveLeave)
	auth.POST("/leaves/:id/reject", staff, leaveCtrl.RejectLeave)

	// DASHBOARD & COMPANY PROFILE
	auth.GET("/dashboard", adminCtrl.GetDashboardStats)
	auth.GET("/company-profile", adminCtrl.GetCompanyProfile)
	auth.POST("/company-profile", staff, adminCtrl.SaveCompanyProfile)

	// Live feed for the staff dashboard
	auth.GET("/ws", staff, liveCtrl.Stream)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"status": false, "message": "route not found"})
	})

	return r, nil
}
