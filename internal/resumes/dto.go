package resumes

// progressResponse adds a printable status to Progress.
type progressResponse struct {
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Status    string `json:"status"`
}

type batchResponse struct {
	BatchID  string           `json:"batchId"`
	Records  []Record         `json:"records"`
	Skipped  []FileNotice     `json:"skipped"`
	Failed   []FileNotice     `json:"failed"`
	Total    int              `json:"total"`
	Progress progressResponse `json:"progress"`
}

type listResponse struct {
	Items  []BatchSummary `json:"items"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

func toProgressResponse(p Progress) progressResponse {
	return progressResponse{Processed: p.Processed, Total: p.Total, Status: p.String()}
}

func toBatchResponse(b Batch) batchResponse {
	return batchResponse{
		BatchID:  b.ID,
		Records:  b.Records,
		Skipped:  b.Skipped,
		Failed:   b.Failed,
		Total:    b.Total,
		Progress: toProgressResponse(Progress{Processed: b.Total, Total: b.Total}),
	}
}
