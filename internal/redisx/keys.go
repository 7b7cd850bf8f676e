package redisx

import "time"

const (
	// Admin dashboard aggregates: dashboard:stats -> JSON blob
	KeyDashboardStats = "dashboard:stats"

	// Per-user recommendations: reco:{user_id} -> JSON array
	KeyRecommendations = "reco:%d"
)

var (
	TTLDashboard       = 5 * time.Minute
	TTLRecommendations = 5 * time.Minute
)
