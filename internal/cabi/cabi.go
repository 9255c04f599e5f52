// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ScanQuery Contributors

//go:build cabi

// Package cabi exposes the scan engine across a C ABI boundary,
// mirroring swallow.h/swallow.cpp's open/close/scan/response surface
// (spec.md §4.3, §6.3) so the library can be linked into a non-Go
// host process.
//
// Go values never cross the boundary as raw pointers: handles are
// opaque uintptr keys into an in-process registry, since passing a Go
// pointer out through cgo and back in is unsafe once the garbage
// collector can move or reclaim it. Accessors that return a
// *C.char (lastkey, value) hand back a copy owned by the response
// entry; it stays valid until del_response frees the entry, matching
// swallow_response_lastkey/swallow_response_value's "valid until the
// Response is deleted" borrowed-pointer contract.
package cabi

/*
#include <stdint.h>
#include <stdbool.h>
#include <stdlib.h>
*/
import "C"

import (
	"context"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/scanquery/scanquery/internal/kvengine"
	"github.com/scanquery/scanquery/internal/predicate"
)

var (
	handles   sync.Map // uintptr -> *instanceHandle
	responses sync.Map // uintptr -> *responseHandle
	nextID    atomic.Uint64
)

type instanceHandle struct {
	inst *kvengine.Instance
}

type responseHandle struct {
	resp     *kvengine.Response
	lastkey  *C.char
	values   []*C.char
	freeOnce sync.Once
}

func (r *responseHandle) free() {
	r.freeOnce.Do(func() {
		if r.lastkey != nil {
			C.free(unsafe.Pointer(r.lastkey))
		}
		for _, v := range r.values {
			if v != nil {
				C.free(unsafe.Pointer(v))
			}
		}
	})
}

func allocID() C.uintptr_t {
	return C.uintptr_t(nextID.Add(1))
}

// scanquery_open opens a store directory for reading. dir/dirLen name
// the directory; when secondary/secondaryLen are non-null/non-zero,
// the store is opened in secondary (follower) mode with that scratch
// directory, matching swallow_open's (dir, secondary) overload
// selection. Returns 0 on failure.
//
//export scanquery_open
func scanquery_open(dir unsafe.Pointer, dirLen C.ulonglong, secondary unsafe.Pointer, secondaryLen C.ulonglong) C.uintptr_t {
	if dir == nil || dirLen == 0 {
		return 0
	}
	dirStr := C.GoStringN((*C.char)(dir), C.int(dirLen))

	cfg := kvengine.Config{Dir: dirStr, Mode: kvengine.ModeReadOnly}
	if secondary != nil && secondaryLen != 0 {
		cfg.Mode = kvengine.ModeSecondary
		cfg.SecondaryDir = C.GoStringN((*C.char)(secondary), C.int(secondaryLen))
	}

	inst, err := kvengine.Open(context.Background(), cfg)
	if err != nil {
		return 0
	}

	id := allocID()
	handles.Store(uintptr(id), &instanceHandle{inst: inst})
	return id
}

// scanquery_close releases a store handle. A zero or unknown handle is
// a no-op, matching swallow_close's null-check.
//
//export scanquery_close
func scanquery_close(handle C.uintptr_t) {
	key := uintptr(handle)
	v, ok := handles.LoadAndDelete(key)
	if !ok {
		return
	}
	h := v.(*instanceHandle)
	_ = h.inst.Close()
}

// scanquery_scan compiles query into a predicate and runs a bounded
// scan between start and end, capped at max_count matching records
// (0 means unbounded), returning an opaque response handle (0 on
// failure — malformed query, unknown instance handle, or an
// iteration error).
//
//export scanquery_scan
func scanquery_scan(handle C.uintptr_t, query unsafe.Pointer, queryLen C.ulonglong, start unsafe.Pointer, startLen C.ulonglong, end unsafe.Pointer, endLen C.ulonglong, maxCount C.ulonglong) C.uintptr_t {
	v, ok := handles.Load(uintptr(handle))
	if !ok {
		return 0
	}
	h := v.(*instanceHandle)

	var pred predicate.Predicate
	if query != nil && queryLen != 0 {
		compiled, err := predicate.Compile(C.GoBytes(query, C.int(queryLen)))
		if err != nil {
			return 0
		}
		pred = compiled
	}

	req := kvengine.ScanRequest{Predicate: pred, MaxCount: int(maxCount)}
	if start != nil && startLen != 0 {
		req.StartKey = C.GoBytes(start, C.int(startLen))
	}
	if end != nil && endLen != 0 {
		req.EndKey = C.GoBytes(end, C.int(endLen))
	}

	resp, err := h.inst.Scan(context.Background(), req)
	if err != nil {
		return 0
	}

	id := allocID()
	responses.Store(uintptr(id), &responseHandle{resp: resp})
	return id
}

// scanquery_check_query reports whether query compiles as a valid
// predicate description without running a scan: true on success.
//
//export scanquery_check_query
func scanquery_check_query(query unsafe.Pointer, queryLen C.ulonglong) C.bool {
	if query == nil || queryLen == 0 {
		return false
	}
	return C.bool(predicate.CheckQuery(C.GoBytes(query, C.int(queryLen))) == nil)
}

func loadResponse(handle C.uintptr_t) *responseHandle {
	v, ok := responses.Load(uintptr(handle))
	if !ok {
		return nil
	}
	return v.(*responseHandle)
}

//export scanquery_response_size
func scanquery_response_size(handle C.uintptr_t) C.ulonglong {
	r := loadResponse(handle)
	if r == nil {
		return 0
	}
	return C.ulonglong(len(r.resp.Values))
}

//export scanquery_response_more
func scanquery_response_more(handle C.uintptr_t) C.bool {
	r := loadResponse(handle)
	if r == nil {
		return false
	}
	return C.bool(r.resp.More)
}

//export scanquery_response_lastkey
func scanquery_response_lastkey(handle C.uintptr_t) *C.char {
	r := loadResponse(handle)
	if r == nil {
		return nil
	}
	if r.lastkey == nil {
		r.lastkey = C.CString(string(r.resp.LastKey))
	}
	return r.lastkey
}

//export scanquery_response_value
func scanquery_response_value(handle C.uintptr_t, index C.ulong) *C.char {
	r := loadResponse(handle)
	if r == nil {
		return nil
	}
	i := int(index)
	if i < 0 || i >= len(r.resp.Values) {
		return nil
	}
	if r.values == nil {
		r.values = make([]*C.char, len(r.resp.Values))
	}
	if r.values[i] == nil {
		r.values[i] = C.CString(string(r.resp.Values[i]))
	}
	return r.values[i]
}

//export scanquery_del_response
func scanquery_del_response(handle C.uintptr_t) {
	key := uintptr(handle)
	v, ok := responses.LoadAndDelete(key)
	if !ok {
		return
	}
	v.(*responseHandle).free()
}
