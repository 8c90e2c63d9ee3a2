package futon

import (
	"bytes"
	"encoding/json"
)

// DatabaseInfo is the metadata returned by GET /{db}.
type DatabaseInfo struct {
	Name              string         `json:"db_name"`
	UpdateSeq         string         `json:"update_seq"`
	PurgeSeq          string         `json:"purge_seq"`
	DocCount          int64          `json:"doc_count"`
	DeletedCount      int64          `json:"doc_del_count"`
	DiskFormatVersion int            `json:"disk_format_version"`
	CompactRunning    bool           `json:"compact_running"`
	InstanceStartTime string         `json:"instance_start_time"`
	Sizes             DatabaseSizes  `json:"sizes"`
	Props             DatabaseProps  `json:"props"`
	Cluster           *ClusterConfig `json:"cluster,omitempty"`
}

// DatabaseSizes reports database sizes in bytes.
type DatabaseSizes struct {
	File     int64 `json:"file"`
	External int64 `json:"external"`
	Active   int64 `json:"active"`
}

// DatabaseProps are the properties the database was created with.
type DatabaseProps struct {
	Partitioned bool `json:"partitioned,omitempty"`
}

// ClusterConfig describes the sharding and quorum settings of a database.
type ClusterConfig struct {
	Q int `json:"q"`
	N int `json:"n"`
	W int `json:"w"`
	R int `json:"r"`
}

// UnmarshalJSON accepts update_seq and purge_seq as either strings (CouchDB
// 2.x and later) or numbers.
func (i *DatabaseInfo) UnmarshalJSON(data []byte) error {
	type alias DatabaseInfo
	result := struct {
		*alias
		UpdateSeq json.RawMessage `json:"update_seq"`
		PurgeSeq  json.RawMessage `json:"purge_seq"`
	}{
		alias: (*alias)(i),
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return err
	}
	i.UpdateSeq = seqString(result.UpdateSeq)
	i.PurgeSeq = seqString(result.PurgeSeq)
	return nil
}

func seqString(raw json.RawMessage) string {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ""
	}
	return string(bytes.Trim(raw, `"`))
}
