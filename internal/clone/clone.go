//
// Copyright (C) 2026 The simboba Authors. All rights reserved.
//
// simboba is licensed under the Apache License Version 2.0.
//
//

// Package clone provides functions to clone stored records.
package clone

import (
	"encoding/json"
	"fmt"
)

// Clone performs a deep copy on src via a JSON round trip.
// Stored records are JSON-serializable by construction, so the round trip is lossless.
func Clone[T any](src *T) (*T, error) {
	if src == nil {
		return nil, fmt.Errorf("nil input")
	}
	data, err := json.Marshal(src)
	if err != nil {
		return nil, err
	}
	var dst T
	if err := json.Unmarshal(data, &dst); err != nil {
		return nil, err
	}
	return &dst, nil
}
