package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"timetable-api/middleware"
	"timetable-api/services"

	"github.com/gin-gonic/gin"
)

// Dependencies wires the services the HTTP API needs.
type Dependencies struct {
	Ledger         *services.Ledger
	Booking        *services.BookingService
	Timetables     *services.TimetableService
	Exporter       services.TimetableExporter
	Cache          *services.CacheService
	Logger         *slog.Logger
	AllowedOrigins []string
}

func NewRouter(deps Dependencies) *gin.Engine {
	entityHandler := NewEntityHandler(deps.Ledger)
	bookingHandler := NewBookingHandler(deps.Booking, deps.Ledger)
	timetableHandler := NewTimetableHandler(deps.Timetables, deps.Exporter, deps.Cache)

	router := gin.New()
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.CORS(deps.AllowedOrigins))
	router.Use(gin.Recovery())

	api := router.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
				"time":   time.Now(),
			})
		})

		// Entity snapshot
		api.GET("/teachers", entityHandler.GetTeachers)
		api.GET("/classes", entityHandler.GetClasses)
		api.GET("/subjects", entityHandler.GetSubjects)
		api.GET("/class-subjects", entityHandler.GetClassSubjects)
		api.PUT("/snapshot", entityHandler.ReplaceSnapshot)

		// Manual bookings
		api.GET("/booked-lectures", bookingHandler.GetBookedLectures)
		api.POST("/book-slot", bookingHandler.BookSlot)
		api.DELETE("/booked-lectures/:id", bookingHandler.CancelBooking)

		// Generation and views
		api.POST("/generate-timetables", timetableHandler.GenerateTimetables)
		api.GET("/generate-timetables", timetableHandler.GenerateTimetables)
		api.GET("/timetables", timetableHandler.GetTimetables)
		api.DELETE("/timetables/generated", timetableHandler.ClearGenerated)
		api.POST("/timetables/export", timetableHandler.ExportTimetables)

		api.POST("/cache/invalidate", timetableHandler.InvalidateCache)
	}

	return router
}
