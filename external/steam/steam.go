package steam

type reviewsEnvelope struct {
	Success      int          `json:"success"`
	QuerySummary querySummary `json:"query_summary"`
}

type querySummary struct {
	NumReviews      int64  `json:"num_reviews"`
	ReviewScore     int    `json:"review_score"`
	ReviewScoreDesc string `json:"review_score_desc"`
	TotalPositive   int64  `json:"total_positive"`
	TotalNegative   int64  `json:"total_negative"`
	TotalReviews    int64  `json:"total_reviews"`
}

type playersEnvelope struct {
	Response playersResponse `json:"response"`
}

type playersResponse struct {
	PlayerCount int64 `json:"player_count"`
	// Result is 1 on success; 42 means the app has no player stats.
	Result int `json:"result"`
}
