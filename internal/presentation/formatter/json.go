package formatter

import (
	"io"

	"github.com/bytedance/sonic"
)

type JSONFormatter struct {
	w io.Writer
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{w: w}
}

func (f *JSONFormatter) Months(rows []MonthRow) error {
	if rows == nil {
		rows = []MonthRow{}
	}
	return f.encode(rows)
}

func (f *JSONFormatter) Days(report DayReport) error {
	if report.Days == nil {
		report.Days = []DayRow{}
	}
	return f.encode(report)
}

func (f *JSONFormatter) encode(v interface{}) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = f.w.Write(append(data, '\n'))
	return err
}
