package formatter

import (
	"encoding/csv"
	"io"
	"strconv"
)

type CSVFormatter struct {
	w io.Writer
}

func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{w: w}
}

func (f *CSVFormatter) Months(rows []MonthRow) error {
	w := csv.NewWriter(f.w)
	if err := w.Write([]string{"month", "label", "posts", "days"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{r.Month, r.Label, strconv.Itoa(r.Posts), strconv.Itoa(r.Days)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (f *CSVFormatter) Days(report DayReport) error {
	w := csv.NewWriter(f.w)
	if err := w.Write([]string{"date", "posts", "first_post_id", "first_post_title"}); err != nil {
		return err
	}
	for _, d := range report.Days {
		if err := w.Write([]string{d.Date, strconv.Itoa(d.Posts), d.FirstPostID, d.FirstPostTitle}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
