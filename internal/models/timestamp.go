package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"pos-backend/internal/timeutil"
)

// Timestamp is a creation time presented in the shop's civil zone.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t, converted to civil time.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: timeutil.In(t)}
}

// UnmarshalBSONValue accepts BSON datetimes as well as the ISO strings some
// older clients wrote, so a legacy document does not fail a whole listing.
func (ts *Timestamp) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null, bsontype.Undefined:
		*ts = Timestamp{}
		return nil
	case bsontype.DateTime:
		var value time.Time
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		*ts = NewTimestamp(value)
		return nil
	case bsontype.String:
		var value string
		if err := bson.UnmarshalValue(t, data, &value); err != nil {
			return err
		}
		parsed, err := timeutil.ParseTimestamp(value)
		if err != nil {
			*ts = Timestamp{}
			return nil
		}
		*ts = Timestamp{Time: parsed}
		return nil
	default:
		return fmt.Errorf("cannot decode %s into Timestamp", t)
	}
}

// MarshalBSONValue always stores a BSON datetime.
func (ts Timestamp) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if ts.IsZero() {
		return bsontype.Null, nil, nil
	}
	return bson.MarshalValue(ts.Time)
}

// DateKey returns the civil YYYY-MM-DD portion, or "" for a missing time.
func (ts Timestamp) DateKey() string {
	if ts.IsZero() {
		return ""
	}
	return timeutil.DateKey(ts.Time)
}
