package main

/*
#include "mist_types.h"
*/
import "C"

import (
	"context"
	"unsafe"
)

// readBuffer holds the data of the last mist_remote_storage_file_read.
var readBuffer unsafe.Pointer

//export mist_remote_storage_begin_file_write_batch
func mist_remote_storage_begin_file_write_batch() C.MistResult {
	return command(func(ctx context.Context) error {
		return instance().RemoteStorage().BeginFileWriteBatch(ctx)
	})
}

//export mist_remote_storage_end_file_write_batch
func mist_remote_storage_end_file_write_batch() C.MistResult {
	return command(func(ctx context.Context) error {
		return instance().RemoteStorage().EndFileWriteBatch(ctx)
	})
}

//export mist_remote_storage_file_write
func mist_remote_storage_file_write(name *C.char, data unsafe.Pointer, size C.uint32_t) C.MistResult {
	n := goString(name)
	var buf []byte
	if data != nil && size > 0 {
		buf = C.GoBytes(data, C.int(size))
	}
	return command(func(ctx context.Context) error {
		return instance().RemoteStorage().FileWrite(ctx, n, buf)
	})
}

// mist_remote_storage_file_read hands out a buffer valid until the next read.
//
//export mist_remote_storage_file_read
func mist_remote_storage_file_read(name *C.char, data *unsafe.Pointer, size *C.uint32_t) C.MistResult {
	mu.Lock()
	defer mu.Unlock()

	content, err := instance().RemoteStorage().FileRead(context.Background(), goString(name))
	if err != nil {
		return toResult(err)
	}
	if readBuffer != nil {
		C.free(readBuffer)
		readBuffer = nil
	}
	if len(content) > 0 {
		readBuffer = C.CBytes(content)
	}
	store(data, readBuffer)
	store(size, C.uint32_t(len(content)))
	return toResult(nil)
}

//export mist_remote_storage_file_exists
func mist_remote_storage_file_exists(name *C.char, exists *C.bool) C.MistResult {
	n := goString(name)
	return boolCall(exists, func(ctx context.Context) (bool, error) {
		return instance().RemoteStorage().FileExists(ctx, n)
	})
}

//export mist_remote_storage_file_delete
func mist_remote_storage_file_delete(name *C.char, existed *C.bool) C.MistResult {
	n := goString(name)
	return boolCall(existed, func(ctx context.Context) (bool, error) {
		return instance().RemoteStorage().FileDelete(ctx, n)
	})
}
