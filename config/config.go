// Package config provides some config utilities and holds the configuration
// keys for the spotted game engine
package config

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Configuration keys
const (
	TokenKey                  = "token"                  // string, the slack bot token
	DebugKey                  = "debug"                  // bool
	StoragePathKey            = "storagePath"            // string, the path to the leveldb storage
	StoreBackendKey           = "storeBackend"           // string, one of "leveldb" or "datastore"
	GCloudProjectIDKey        = "gcloudProjectID"        // string, the gcloud project id when using the datastore backend
	GCloudCredentialsFileKey  = "gcloudCredentialsFile"  // string, optional path to gcloud credentials
	LedgerSizeKey             = "ledgerSize"             // int, the capacity of the deduplication ledger
	UserInfoCacheSizeKey      = "userInfoCacheSize"      // int, the number of entries in the user info cache. Defaults to 0 (disabled)
	AttachmentWaitMillisKey   = "attachmentWaitMillis"   // int, how long to wait before refetching a message without files
	AdjacencyMatchingKey      = "adjacencyMatching"      // bool, whether to look for mentions in adjacent messages. Defaults to false
	MaxFanOutKey              = "maxFanOut"              // int, the most mentions a single spot can score
	FileShareWindowSecondsKey = "fileShareWindowSeconds" // int, how long a mention-less file share waits for a companion message
	HTTPAddrKey               = "httpAddr"               // string, the listen address of the read-side http server
	TimeLocationKey           = "timeLocation"           // string, the time location used by the digest scheduler
	DigestKey                 = "digest"                 // map of the digest sub-keys below
)

// Digest sub-keys, nested under DigestKey
const (
	DigestChannelKey = "channel" // string, the channel the digest is posted to. Empty disables the digest
	DigestWeekdayKey = "weekday" // string, the weekday of the digest posting (i.e. "Monday")
	DigestAtTimeKey  = "atTime"  // string, the time of the digest posting (i.e. "10:00")
	DigestCountKey   = "count"   // int, how many leaderboard entries the digest shows
)

// Backend values for StoreBackendKey
const (
	BackendLevelDB   = "leveldb"
	BackendDatastore = "datastore"
)

// NewViperWithDefaults creates a new viper instance with all default values set
func NewViperWithDefaults() (v *viper.Viper) {
	v = viper.New()
	v = LayerConfigWithDefaults(v)

	return v
}

// LayerConfigWithDefaults layers the default values underneath an existing
// viper instance
func LayerConfigWithDefaults(v *viper.Viper) *viper.Viper {
	v.SetDefault(DebugKey, false)
	v.SetDefault(StoragePathKey, "~/.spotted")
	v.SetDefault(StoreBackendKey, BackendLevelDB)
	v.SetDefault(LedgerSizeKey, 5000)
	v.SetDefault(UserInfoCacheSizeKey, 0)
	v.SetDefault(AttachmentWaitMillisKey, 2000)
	v.SetDefault(AdjacencyMatchingKey, false)
	v.SetDefault(MaxFanOutKey, 10)
	v.SetDefault(FileShareWindowSecondsKey, 60)
	v.SetDefault(HTTPAddrKey, ":8080")
	v.SetDefault(TimeLocationKey, "Local")

	return v
}

// GetTimeLocation reads the TimeLocationKey and maps the value to the
// time.Location
func GetTimeLocation(v *viper.Viper) (timeLoc *time.Location, err error) {
	timeLocationID := v.GetString(TimeLocationKey)

	timeLoc, err = time.LoadLocation(timeLocationID)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid time location [%s]", timeLocationID)
	}

	return timeLoc, nil
}

// GetDigest returns the digest configuration as a flat map of the digest
// sub-keys. The map is empty when no digest is configured
func GetDigest(v *viper.Viper) map[string]string {
	return cast.ToStringMapString(v.Get(DigestKey))
}
