package etl

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"flashsale-backend/internal/flashsale"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"
)

// SaleSnapshotRow matches the Glue table columns for the flash-sale
// configuration snapshot.
type SaleSnapshotRow struct {
	SnapshotDate string `parquet:"name=snapshot_date, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"` // YYYY-MM-DD
	ProductID    string `parquet:"name=product_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ProductName  string `parquet:"name=product_name, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	EndsAt       string `parquet:"name=ends_at, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	UpdatedAt    string `parquet:"name=updated_at, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

type SalesSnapshotETL struct {
	ddb *dynamodb.Client
	s3  *s3.Client
}

func NewSalesSnapshotETL(cfg aws.Config) *SalesSnapshotETL {
	return &SalesSnapshotETL{
		ddb: dynamodb.NewFromConfig(cfg),
		s3:  s3.NewFromConfig(cfg),
	}
}

// Handle is triggered by an EventBridge schedule. It scans the flash-sales
// table and writes one parquet file for the day under:
//
//	flash_sales/dt=YYYY-MM-DD/part-<rand>.parquet
//
// Env:
// - FLASH_SALES_TABLE (required)
// - ANALYTICS_BUCKET (required)
// - SALES_SNAPSHOT_PREFIX (default "flash_sales/")
func (h *SalesSnapshotETL) Handle(ctx context.Context, _ events.CloudWatchEvent) (map[string]any, error) {
	bucket := strings.TrimSpace(os.Getenv("ANALYTICS_BUCKET"))
	if bucket == "" {
		return nil, fmt.Errorf("missing env ANALYTICS_BUCKET")
	}

	prefix := strings.TrimSpace(os.Getenv("SALES_SNAPSHOT_PREFIX"))
	if prefix == "" {
		prefix = "flash_sales/"
	}

	store, err := flashsale.NewStore(h.ddb)
	if err != nil {
		return nil, err
	}

	records, err := store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan flash sales: %w", err)
	}

	dtStr := time.Now().UTC().Format("2006-01-02")
	if len(records) == 0 {
		return map[string]any{"ok": true, "written": 0, "reason": "no sale records"}, nil
	}

	rows := make([]SaleSnapshotRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, SaleSnapshotRow{
			SnapshotDate: dtStr,
			ProductID:    r.ProductID,
			ProductName:  r.ProductName,
			EndsAt:       r.EndsAt,
			UpdatedAt:    r.UpdatedAt,
		})
	}

	key := fmt.Sprintf("%sdt=%s/part-%s.parquet", ensureTrailingSlash(prefix), dtStr, randHex(8))
	if err := h.writeParquetToS3(ctx, bucket, key, rows); err != nil {
		return nil, fmt.Errorf("write snapshot for dt=%s: %w", dtStr, err)
	}

	return map[string]any{
		"ok":      true,
		"written": len(rows),
		"bucket":  bucket,
		"key":     key,
	}, nil
}

func (h *SalesSnapshotETL) writeParquetToS3(ctx context.Context, bucket, key string, rows []SaleSnapshotRow) error {
	localPath := filepath.Join(os.TempDir(), "flash_sales_"+randHex(8)+".parquet")

	fw, err := local.NewLocalFileWriter(localPath)
	if err != nil {
		return fmt.Errorf("parquet file writer: %w", err)
	}

	pw, err := writer.NewParquetWriter(fw, new(SaleSnapshotRow), 1)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer: %w", err)
	}
	pw.RowGroupSize = 128 * 1024 * 1024
	pw.PageSize = 8 * 1024
	pw.CompressionType = 0 // no snappy

	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return fmt.Errorf("parquet write row: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet write stop: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("parquet close: %w", err)
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("read parquet tmp: %w", err)
	}
	defer func() { _ = os.Remove(localPath) }()

	_, err = h.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
		ACL:         s3types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return fmt.Errorf("s3 putobject failed: %w", err)
	}
	return nil
}

func ensureTrailingSlash(s string) string {
	if s == "" || strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

func randHex(nBytes int) string {
	b := make([]byte, nBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
