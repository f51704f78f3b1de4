package routes

import (
	"member-service/config"
	"member-service/handlers"
	"member-service/middleware"

	"github.com/gorilla/mux"
)

func SetupRoutes(cfg config.Config, memberHandler *handlers.MemberHandler) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger)

	auth := middleware.AuthMiddleware(cfg)

	router.HandleFunc("/terms", middleware.ErrorHandler(memberHandler.TermsHandler)).Methods("GET")
	router.Handle("/terms/check", auth(middleware.ErrorHandler(memberHandler.CheckTermsHandler))).Methods("GET")
	router.Handle("/terms/accept", auth(middleware.ErrorHandler(memberHandler.AcceptTermsHandler))).Methods("POST")
	router.Handle("/profile", auth(middleware.ErrorHandler(memberHandler.ProfileHandler))).Methods("GET")
	router.HandleFunc("/health", handlers.HealthHandler).Methods("GET")

	return router
}
