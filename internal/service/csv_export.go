package service

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ExportFilename 是下载附件的文件名。
const ExportFilename = "content_schedule.csv"

// CSVHeader 是导出文件的固定表头。
var CSVHeader = []string{
	"platform",
	"post_id",
	"variant_a",
	"variant_b",
	"timestamp",
	"analytics_a_likes",
	"analytics_a_comments",
	"analytics_a_shares",
	"analytics_b_likes",
	"analytics_b_comments",
	"analytics_b_shares",
}

// WriteCSV 写出表头与每条记录，记录为空时返回 ErrEmptyExport。
func WriteCSV(w io.Writer, records []ExportRecord) error {
	if len(records) == 0 {
		return ErrEmptyExport
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, record := range records {
		if err := writer.Write(record.row()); err != nil {
			return fmt.Errorf("write csv row %s: %w", record.PostID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (r ExportRecord) row() []string {
	return []string{
		r.Platform,
		r.PostID,
		r.VariantA,
		r.VariantB,
		r.Timestamp,
		strconv.Itoa(r.AnalyticsALikes),
		strconv.Itoa(r.AnalyticsAComments),
		strconv.Itoa(r.AnalyticsAShares),
		strconv.Itoa(r.AnalyticsBLikes),
		strconv.Itoa(r.AnalyticsBComments),
		strconv.Itoa(r.AnalyticsBShares),
	}
}

// EncodeRecords 将记录编码为 JSON，供页面回传给下载接口。
func EncodeRecords(records []ExportRecord) (string, error) {
	if records == nil {
		records = []ExportRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode records: %w", err)
	}
	return string(data), nil
}

// DecodeRecords 解析页面回传的 JSON 记录列表。
func DecodeRecords(raw string) ([]ExportRecord, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyExport
	}
	var records []ExportRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return records, nil
}
