package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-progress/internal/activity"
	auth "github.com/mind-engage/mindengage-progress/internal/auth/middleware"
	"github.com/mind-engage/mindengage-progress/internal/logger"
	"github.com/mind-engage/mindengage-progress/internal/rbac"
)

// MountActivities registers the activity and progress routes on r. The caller is
// expected to have installed auth.JWTMiddleware on r.
func MountActivities(r chi.Router, store activity.Store, log *logger.Logger) {
	ownsPath := func(req *http.Request) bool {
		sub := auth.SubjectFromContext(req.Context())
		return sub != "" && sub == chi.URLParam(req, "userID")
	}

	r.With(rbac.Require("activity:create")).
		Post("/activities", CreateActivityHandler(store, log))
	r.With(rbac.Require("activity:view")).
		Get("/activities", ListActivitiesHandler(store, log))

	r.Route("/activities/{activityID}", func(ar chi.Router) {
		ar.With(rbac.Require("activity:view")).
			Get("/", GetActivityHandler(store, log))

		// Student flow
		ar.With(rbac.Require("progress:view-own")).
			Get("/progress", GetProgressHandler(store, log))
		ar.With(rbac.Require("progress:save")).
			Put("/progress", PutProgressHandler(store, log))
		ar.With(rbac.Require("progress:save")).
			Delete("/progress", DeleteProgressHandler(store, log))
		ar.With(rbac.Require("progress:save")).
			Post("/answers", PostAnswerHandler(store, log))

		// Teacher dashboards
		ar.With(rbac.Require("progress:view-all")).
			Get("/progress/all", ListProgressHandler(store, log))
		ar.With(rbac.RequireOwnerOr("progress:view-all", ownsPath)).
			Get("/progress/{userID}", GetUserProgressHandler(store, log))
		ar.With(rbac.Require("progress:reset-any")).
			Delete("/progress/{userID}", ResetUserProgressHandler(store, log))
	})
}
