package backend

import (
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/backend/blobs"
)

const (
	BlobStoreBadger = "badger"
	BlobStoreS3     = "s3"
)

// Config holds runtime settings of the embedded backend.
//
// Fields:
//   - Driver / DSN: SQL store ("sqlite" or "pgx"); ":memory:" keeps SQLite in memory.
//   - IndexPath: bluge index directory; empty keeps the index in memory and
//     rebuilds it from the SQL store on start.
//   - BlobStore: "badger" or "s3". BadgerDir empty means an in-memory Badger.
//   - PublicURL: base URL of the gateway, used for Badger blob links.
//   - SecretKey / SessionTTL: HS256 session tokens.
//   - AccountLimitBytes: quota assigned to accounts on first sight; 0 is unlimited.
//   - MaxUploadBytes: hard limit per upload; 0 disables it.
type Config struct {
	Driver    string
	DSN       string
	IndexPath string

	BlobStore    string
	BadgerDir    string
	PublicURL    string
	S3           blobs.S3Config
	CreateBucket bool

	SecretKey  string
	SessionTTL time.Duration

	AccountLimitBytes int64
	MaxUploadBytes    int64
}

// LoadDefaults populates c with development defaults: everything in memory.
// NOTE: the secret key is insecure and must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.Driver = "sqlite"
	c.DSN = ":memory:"
	c.IndexPath = ""
	c.BlobStore = BlobStoreBadger
	c.BadgerDir = ""
	c.PublicURL = ""
	c.S3 = blobs.S3Config{
		Endpoint:  "http://127.0.0.1:9000/",
		Region:    "us-east-1",
		Bucket:    "cloudkeeper",
		AccessKey: "admin",
		SecretKey: "secretpassword",
		URLExpiry: 15 * time.Minute,
	}
	c.CreateBucket = true
	c.SecretKey = "secretKey"
	c.SessionTTL = 24 * time.Hour
	c.AccountLimitBytes = 2 << 30
	c.MaxUploadBytes = 0
}
