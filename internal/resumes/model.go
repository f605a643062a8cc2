package resumes

import (
	"fmt"
	"time"
)

// Record is the contact information extracted from one resume. Absent fields are nil.
type Record struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	FileName      string  `json:"fileName"`
	Qualification string  `json:"qualification"`
	ViewURL       string  `json:"viewUrl,omitempty"`
}

// FileNotice explains why a file produced no record or an empty one.
type FileNotice struct {
	FileName string `json:"fileName"`
	Reason   string `json:"reason"`
}

// Batch is the result of processing one set of uploaded files.
type Batch struct {
	ID        string       `json:"batchId"`
	UserID    string       `json:"-"`
	Records   []Record     `json:"records"`
	Skipped   []FileNotice `json:"skipped"`
	Failed    []FileNotice `json:"failed"`
	Total     int          `json:"total"`
	CreatedAt time.Time    `json:"createdAt"`
}

// BatchSummary is the list view of a stored batch.
type BatchSummary struct {
	ID        string    `json:"batchId"`
	Total     int       `json:"total"`
	Records   int       `json:"records"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary reduces a batch to its counts.
func (b Batch) Summary() BatchSummary {
	return BatchSummary{
		ID:        b.ID,
		Total:     b.Total,
		Records:   len(b.Records),
		Skipped:   len(b.Skipped),
		Failed:    len(b.Failed),
		CreatedAt: b.CreatedAt,
	}
}

// Upload is one user-supplied file.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
	// Size is the declared size; set when Data was not read because it is over the limit.
	Size int64
}

func (u Upload) size() int64 {
	return max(int64(len(u.Data)), u.Size)
}

// Progress counts files handled so far in a batch.
type Progress struct {
	Processed int `json:"processed"`
	Total     int `json:"total"`
}

// Advance returns the progress after one more file.
func (p Progress) Advance() Progress {
	if p.Processed < p.Total {
		p.Processed++
	}
	return p
}

// Fraction is Processed/Total, or 1 for an empty batch.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 1
	}
	return float64(p.Processed) / float64(p.Total)
}

// Done reports whether every file has been handled.
func (p Progress) Done() bool {
	return p.Processed >= p.Total
}

func (p Progress) String() string {
	return fmt.Sprintf("Processed %d out of %d files (%.0f%%)", p.Processed, p.Total, p.Fraction()*100)
}

func optional(value string, ok bool) *string {
	if !ok {
		return nil
	}
	return &value
}
