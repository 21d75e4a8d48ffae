// Copyright 2026 The ubitlog Authors. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package ubitlog

import "time"

func defaultNowMillis() int64 {
	return time.Now().UnixMilli()
}
