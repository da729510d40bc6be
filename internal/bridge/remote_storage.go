package bridge

import (
	"context"

	"github.com/GriffinCanCode/mist/internal/protocol"
	"github.com/GriffinCanCode/mist/internal/result"
)

// RemoteStorage accesses cloud saved files.
type RemoteStorage struct{ b *Bridge }

// RemoteStorage returns the remote storage client.
func (b *Bridge) RemoteStorage() RemoteStorage { return RemoteStorage{b} }

// BeginFileWriteBatch opens a write batch. Only one batch can be open; the
// batch stays closed when the helper is not running or rejects it.
func (r RemoteStorage) BeginFileWriteBatch(ctx context.Context) error {
	if err := r.b.sup.HealthCheck(); err != nil {
		return r.b.fail(err)
	}
	err := r.b.batch.Begin(func() error {
		return r.b.sup.Invoke(ctx, protocol.OpRemoteStorageBeginFileWriteBatch, nil, nil)
	})
	return r.b.fail(err)
}

// EndFileWriteBatch closes the open batch. The batch is closed locally even
// when the helper fails to end it or is already gone.
func (r RemoteStorage) EndFileWriteBatch(ctx context.Context) error {
	if err := r.b.sup.HealthCheck(); err != nil {
		r.b.batch.Reset()
		return r.b.fail(err)
	}
	err := r.b.batch.End(func() error {
		return r.b.sup.Invoke(ctx, protocol.OpRemoteStorageEndFileWriteBatch, nil, nil)
	})
	return r.b.fail(err)
}

func (r RemoteStorage) FileWrite(ctx context.Context, name string, data []byte) error {
	if err := r.checkName(name); err != nil {
		return err
	}
	return r.b.invoke(ctx, protocol.OpRemoteStorageFileWrite, protocol.FileWriteArgs{Name: name, Data: data}, nil)
}

func (r RemoteStorage) FileRead(ctx context.Context, name string) ([]byte, error) {
	if err := r.checkName(name); err != nil {
		return nil, err
	}
	d, err := call[protocol.FileData](ctx, r.b, protocol.OpRemoteStorageFileRead, protocol.FileArgs{Name: name})
	if err != nil {
		return nil, err
	}
	return d.Data, nil
}

func (r RemoteStorage) FileExists(ctx context.Context, name string) (bool, error) {
	if err := r.checkName(name); err != nil {
		return false, err
	}
	return call[bool](ctx, r.b, protocol.OpRemoteStorageFileExists, protocol.FileArgs{Name: name})
}

// FileDelete reports whether the file existed.
func (r RemoteStorage) FileDelete(ctx context.Context, name string) (bool, error) {
	if err := r.checkName(name); err != nil {
		return false, err
	}
	return call[bool](ctx, r.b, protocol.OpRemoteStorageFileDelete, protocol.FileArgs{Name: name})
}

func (r RemoteStorage) checkName(name string) error {
	if name == "" {
		return r.b.fail(result.Mist(result.InvalidString, "file name must not be empty"))
	}
	return r.b.checkStrings("file name", name)
}
