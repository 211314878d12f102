package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"yacut/disk"
	"yacut/storage"
	"yacut/types"
	"yacut/urlgen"
	"yacut/utils"
)

// DiskClient is the part of the cloud-drive API the uploader needs.
type DiskClient interface {
	UploadLink(ctx context.Context, token, path string) (disk.Link, error)
	Upload(ctx context.Context, href string, content []byte) error
	DownloadLink(ctx context.Context, token, path string) (disk.Link, error)
}

// UploadState is a step of the per-file upload protocol.
type UploadState int

const (
	StatePreparingPath UploadState = iota
	StateAwaitingUploadLink
	StateTransferringBytes
	StateAwaitingDownloadLink
	StateDone
	StateFailed
)

func (s UploadState) String() string {
	switch s {
	case StatePreparingPath:
		return "preparing path"
	case StateAwaitingUploadLink:
		return "awaiting upload link"
	case StateTransferringBytes:
		return "transferring bytes"
	case StateAwaitingDownloadLink:
		return "awaiting download link"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("UploadState(%d)", int(s))
	}
}

// UploadError reports the file and protocol step an upload failed in.
type UploadError struct {
	Filename   string
	RemotePath string
	State      UploadState
	Err        error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %q failed while %s: %v", e.Filename, e.State, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// bytesStored reports whether the file may already exist on the drive.
func (e *UploadError) bytesStored() bool {
	return e.State == StateAwaitingDownloadLink
}

type UploadService interface {
	// UploadFiles publishes files on the drive and stores one short link per file.
	// Either every file gets a link or none does.
	UploadFiles(ctx context.Context, files []types.FileToUpload, token string) ([]types.UploadedFile, error)
}

type uploadService struct {
	disk      DiskClient
	store     storage.Storage
	generator *urlgen.Generator
	root      string
	logger    *zap.Logger
}

func NewUploadService(client DiskClient, store storage.Storage, generator *urlgen.Generator, root string, logger *zap.Logger) UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &uploadService{
		disk:      client,
		store:     store,
		generator: generator,
		root:      root,
		logger:    logger,
	}
}

func (s *uploadService) UploadFiles(ctx context.Context, files []types.FileToUpload, token string) ([]types.UploadedFile, error) {
	if len(files) == 0 {
		return []types.UploadedFile{}, nil
	}
	if token == "" {
		return nil, ErrMissingCredentials
	}

	results := make([]types.UploadedFile, 0, len(files))
	taken := make(map[string]struct{}, len(files))
	var onDisk []string

	for _, file := range files {
		result, path, err := s.uploadFile(ctx, file, token, taken)
		if err != nil {
			var uploadErr *UploadError
			if errors.As(err, &uploadErr) && uploadErr.bytesStored() {
				onDisk = append(onDisk, uploadErr.RemotePath)
			}
			if len(onDisk) > 0 {
				s.logger.Warn("Upload batch aborted; files remain on disk without short links",
					zap.Strings("paths", onDisk))
			}
			return nil, err
		}
		taken[result.ShortID] = struct{}{}
		onDisk = append(onDisk, path)
		results = append(results, result)
	}

	urlMaps := make([]*types.URLMap, 0, len(results))
	for _, r := range results {
		urlMaps = append(urlMaps, &types.URLMap{Original: r.DownloadURL, Short: r.ShortID})
	}
	if err := s.store.CreateBatch(ctx, urlMaps); err != nil {
		s.logger.Warn("Upload batch not stored; files remain on disk without short links",
			zap.Strings("paths", onDisk), zap.Error(err))
		return nil, handleStorageError(err)
	}
	return results, nil
}

// uploadFile runs the protocol for one file and returns its result and remote path.
func (s *uploadService) uploadFile(ctx context.Context, file types.FileToUpload, token string, taken map[string]struct{}) (types.UploadedFile, string, error) {
	state := StatePreparingPath
	var path string
	fail := func(err error) (types.UploadedFile, string, error) {
		s.logger.Warn("File upload failed",
			zap.String("filename", file.Filename),
			zap.String("path", path),
			zap.Stringer("state", StateFailed),
			zap.Stringer("failedAt", state),
			zap.Error(err))
		return types.UploadedFile{}, "", &UploadError{Filename: file.Filename, RemotePath: path, State: state, Err: err}
	}

	shortID, err := s.generator.UniqueExcluding(ctx, taken)
	if err != nil {
		return fail(err)
	}
	path = utils.RemotePath(s.root, shortID, file.Filename)

	state = StateAwaitingUploadLink
	uploadLink, err := s.disk.UploadLink(ctx, token, path)
	if err != nil {
		return fail(err)
	}

	state = StateTransferringBytes
	if err := s.disk.Upload(ctx, uploadLink.Href, file.Content); err != nil {
		return fail(err)
	}

	state = StateAwaitingDownloadLink
	downloadLink, err := s.disk.DownloadLink(ctx, token, path)
	if err != nil {
		return fail(err)
	}

	state = StateDone
	s.logger.Info("File uploaded",
		zap.String("filename", file.Filename),
		zap.String("path", path),
		zap.String("short", shortID),
		zap.Stringer("state", state))

	return types.UploadedFile{
		Filename:    file.Filename,
		ShortID:     shortID,
		DownloadURL: downloadLink.Href,
	}, path, nil
}
