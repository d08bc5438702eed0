package routes

import (
	"github.com/AnshRaj112/graceway-backend/internal/handlers"
	"github.com/AnshRaj112/graceway-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// Guards are the per-route middlewares the table below applies.
type Guards struct {
	Auth     *middleware.Auth
	Throttle *middleware.Throttle
	Login    *middleware.IPLimiter
}

func SetupRoutes(r chi.Router, h *handlers.Handler, g Guards) {
	protect := g.Auth.Require
	optional := g.Auth.Optional
	throttle := g.Throttle.Handler
	elevated := middleware.RequireElevated
	admin := middleware.RequireAdmin
	loginLimit := g.Login.Limit("Too many login attempts. Please try again later.")

	r.Get("/health", h.Health)

	r.With(protect, elevated).Get("/ws/moderation", h.ModerationFeed)

	r.Route("/api/auth", func(r chi.Router) {
		r.With(loginLimit).Post("/register", h.Register)
		r.With(loginLimit).Post("/login", h.Login)
		r.Group(func(r chi.Router) {
			r.Use(protect)
			r.Get("/me", h.Me)
			r.Post("/logout", h.Logout)
			r.Put("/update-profile", h.UpdateProfile)
			r.Put("/update-password", h.UpdatePassword)
		})
	})

	r.Route("/api/devotionals", func(r chi.Router) {
		r.With(optional).Get("/", h.ListDevotionals)
		r.Get("/published", h.PublishedDevotionals)
		r.Get("/today", h.TodayDevotional)
		r.With(optional).Get("/{id}", h.GetDevotional)
		r.Group(func(r chi.Router) {
			r.Use(protect)
			r.With(throttle).Post("/{id}/like", h.LikeDevotional)
			r.With(throttle).Post("/{id}/reflect", h.ReflectOnDevotional)
			r.Put("/{id}/reflections/{reflectionId}", h.UpdateDevotionalReflection)
			r.Post("/{id}/read", h.ReadDevotional)
			r.With(elevated).Post("/", h.CreateDevotional)
			r.With(elevated).Put("/{id}", h.UpdateDevotional)
			r.With(elevated).Patch("/{id}/status", h.SetDevotionalStatus)
			r.With(admin).Delete("/{id}", h.DeleteDevotional)
		})
	})

	r.Route("/api/prayers", func(r chi.Router) {
		r.Use(protect)
		r.Get("/", h.ListPrayers)
		r.Get("/my-prayers", h.MyPrayers)
		r.Get("/public", h.PublicPrayers)
		r.Get("/{id}", h.GetPrayer)
		r.Get("/{id}/tree", h.PrayerTree)
		r.Post("/", h.CreatePrayer)
		r.With(throttle).Post("/{id}/pray", h.PrayFor)
		r.With(throttle).Post("/{id}/like", h.LikePrayer)
		r.With(throttle).Post("/{id}/comment", h.CommentOnPrayer)
		r.Post("/{id}/answer", h.MarkPrayerAnswered)
		r.Post("/{id}/child", h.AddChildPrayer)
		r.Put("/{id}", h.UpdatePrayer)
		r.Delete("/{id}", h.DeletePrayer)
		r.With(elevated).Patch("/{id}/flag", h.FlagPrayer)
		r.With(elevated).Delete("/{id}/comment/{commentId}", h.DeletePrayerComment)
	})

	r.Route("/api/verse-art", func(r chi.Router) {
		r.With(optional).Get("/", h.ListVerseArt)
		r.Get("/public", h.PublicVerseArt)
		r.With(protect).Get("/user/my-art", h.MyVerseArt)
		r.With(optional).Get("/{id}", h.GetVerseArt)
		r.Group(func(r chi.Router) {
			r.Use(protect)
			r.Post("/", h.CreateVerseArt)
			r.With(throttle).Post("/{id}/like", h.LikeVerseArt)
			r.Post("/{id}/share", h.ShareVerseArt)
			r.Post("/{id}/download", h.DownloadVerseArt)
			r.With(throttle).Post("/{id}/comment", h.CommentOnVerseArt)
			r.Post("/{id}/image", h.UploadVerseArtImage)
			r.Put("/{id}", h.UpdateVerseArt)
			r.Delete("/{id}", h.DeleteVerseArt)
			r.With(elevated).Patch("/{id}/flag", h.FlagVerseArt)
			r.With(elevated).Delete("/{id}/comment/{commentId}", h.DeleteVerseArtComment)
		})
	})

	r.Route("/api/verse-of-day", func(r chi.Router) {
		r.Get("/", h.ListVerses)
		r.Get("/today", h.TodayVerse)
		r.With(optional).Get("/{id}", h.GetVerse)
		r.Group(func(r chi.Router) {
			r.Use(protect)
			r.With(throttle).Post("/{id}/like", h.LikeVerse)
			r.With(throttle).Post("/{id}/reflect", h.ReflectOnVerse)
			r.Post("/{id}/share", h.ShareVerse)
			r.With(elevated).Post("/", h.CreateVerse)
			r.With(elevated).Put("/{id}", h.UpdateVerse)
			r.With(elevated).Patch("/{id}/status", h.SetVerseStatus)
			r.With(admin).Delete("/{id}", h.DeleteVerse)
		})
	})

	r.Route("/api/quests", func(r chi.Router) {
		r.With(optional).Get("/", h.ListQuests)
		r.Get("/active", h.ActiveQuests)
		r.With(optional).Get("/{id}", h.GetQuest)
		r.Group(func(r chi.Router) {
			r.Use(protect)
			r.Get("/{id}/my-progress", h.MyQuestProgress)
			r.Post("/{id}/join", h.JoinQuest)
			r.Post("/{id}/progress", h.UpdateQuestProgress)
			r.Post("/{id}/complete", h.CompleteQuest)
			r.With(elevated).Post("/", h.CreateQuest)
			r.With(elevated).Put("/{id}", h.UpdateQuest)
			r.With(elevated).Patch("/{id}/status", h.SetQuestStatus)
			r.With(admin).Delete("/{id}", h.DeleteQuest)
		})
	})

	r.Route("/api/reading-plans", func(r chi.Router) {
		r.With(optional).Get("/", h.ListReadingPlans)
		r.Get("/active", h.ActiveReadingPlans)
		r.With(protect).Get("/user/enrolled", h.EnrolledPlans)
		r.With(optional).Get("/{id}", h.GetReadingPlan)
		r.Group(func(r chi.Router) {
			r.Use(protect)
			r.Get("/{id}/my-progress", h.MyPlanProgress)
			r.Post("/{id}/enroll", h.EnrollInPlan)
			r.Post("/{id}/progress", h.UpdatePlanProgress)
			r.Post("/{id}/complete", h.CompletePlan)
			r.Post("/{id}/rate", h.RatePlan)
			r.With(elevated).Post("/", h.CreateReadingPlan)
			r.With(elevated).Put("/{id}", h.UpdateReadingPlan)
			r.With(elevated).Patch("/{id}/status", h.SetReadingPlanStatus)
			r.With(admin).Delete("/{id}", h.DeleteReadingPlan)
		})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(protect)
		r.Get("/profile", h.Me)
		r.Put("/profile", h.UpdateProfile)
		r.Put("/preferences", h.UpdatePreferences)
		r.Put("/parental-controls", h.UpdateParentalControls)
		r.Get("/bookmarks", h.Bookmarks)
		r.Post("/bookmarks", h.AddBookmark)
		r.Delete("/bookmarks/{bookmarkId}", h.RemoveBookmark)
		r.Get("/highlights", h.Highlights)
		r.Post("/highlights", h.AddHighlight)
		r.Delete("/highlights/{highlightId}", h.RemoveHighlight)
		r.Get("/stats", h.Stats)
		r.Post("/stats/update-streak", h.UpdateStreak)
		r.Post("/stats/add-points", h.AddPoints)

		r.With(elevated).Get("/", h.ListUsers)
		r.With(elevated).Get("/{id}", h.GetUser)
		r.With(admin).Patch("/{id}/status", h.SetUserStatus)
		r.With(admin).Patch("/{id}/role", h.SetUserRole)
		r.With(admin).Delete("/{id}", h.DeleteUser)
	})

	r.Route("/api/mood", func(r chi.Router) {
		r.Use(protect)
		r.Post("/", h.LogMood)
		r.Get("/today", h.TodayMood)
		r.Get("/history", h.MoodHistory)
	})

	r.Route("/api/moderation", func(r chi.Router) {
		r.Use(protect, elevated)
		r.Get("/flagged-content", h.FlaggedContent)
		r.Get("/pending-comments", h.PendingComments)
		r.Get("/reported-users", h.ReportedUsers)
		r.Post("/approve-comment/{commentId}", h.ApproveComment)
		r.Post("/reject-comment/{commentId}", h.RejectComment)
		r.Post("/flag-content", h.FlagContent)
		r.Post("/unflag-content", h.UnflagContent)
		r.Post("/warn-user/{userId}", h.WarnUser)
		r.With(admin).Post("/suspend-user/{userId}", h.SuspendUser)
		r.With(admin).Get("/actions", h.ModerationActions)
	})

	r.Route("/api/analytics", func(r chi.Router) {
		r.Use(protect, admin)
		r.Get("/dashboard", h.DashboardAnalytics)
		r.Get("/users", h.UserAnalytics)
		r.Get("/engagement", h.EngagementAnalytics)
		r.Get("/content", h.ContentAnalytics)
		r.Get("/growth", h.GrowthAnalytics)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)
}
