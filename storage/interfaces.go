package storage

import "house-price-estimator/models"

// RecordStore is the interface any training-record backend must satisfy.
// Write replaces the stored table; FetchAll returns rows in insertion order.
type RecordStore interface {
	Write(records []*models.CanonicalRecord) error
	FetchAll() ([]*models.CanonicalRecord, error)
	Close() error
}

// RawRecordWriter is the interface for persisting unprocessed listings.
type RawRecordWriter interface {
	WriteRaw(records []*models.RawRecord) error
	Close() error
}
