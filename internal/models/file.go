package models

// FileDescriptor is a file as recorded on the order document. DriveFileID
// stays nil until the upload completes.
type FileDescriptor struct {
	Provider    string  `json:"provider"`
	DriveFileID *string `json:"driveFileId"`
	Filename    string  `json:"filename"`
	ContentType string  `json:"contentType"`
	Size        *int64  `json:"size"`
}

// UploadedFile is one record of the uploader's result payload.
type UploadedFile struct {
	Filename    string `json:"filename"`
	FileID      string `json:"fileId"`
	ContentType string `json:"contentType"`
	Size        *int64 `json:"size,omitempty"`
}

func (f FileDescriptor) Uploaded() bool {
	return f.DriveFileID != nil && *f.DriveFileID != ""
}

func (f FileDescriptor) Clone() FileDescriptor {
	out := f
	if f.DriveFileID != nil {
		id := *f.DriveFileID
		out.DriveFileID = &id
	}
	if f.Size != nil {
		size := *f.Size
		out.Size = &size
	}
	return out
}

func (f FileDescriptor) Equal(o FileDescriptor) bool {
	return f.Provider == o.Provider &&
		f.Filename == o.Filename &&
		f.ContentType == o.ContentType &&
		equalString(f.DriveFileID, o.DriveFileID) &&
		equalInt64(f.Size, o.Size)
}

// PendingFile describes a locally staged file before it reaches the bridge.
func PendingFile(filename, contentType string, size int64) FileDescriptor {
	if contentType == "" {
		contentType = DefaultContentType
	}
	return FileDescriptor{
		Provider:    ProviderDrive,
		Filename:    filename,
		ContentType: contentType,
		Size:        &size,
	}
}

// Normalize turns uploader result records into order file descriptors.
func Normalize(uploaded []UploadedFile) []FileDescriptor {
	files := make([]FileDescriptor, 0, len(uploaded))
	for _, u := range uploaded {
		contentType := u.ContentType
		if contentType == "" {
			contentType = DefaultContentType
		}
		fd := FileDescriptor{
			Provider:    ProviderDrive,
			Filename:    u.Filename,
			ContentType: contentType,
		}
		if u.FileID != "" {
			id := u.FileID
			fd.DriveFileID = &id
		}
		if u.Size != nil {
			size := *u.Size
			fd.Size = &size
		}
		files = append(files, fd)
	}
	return files
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalInt64(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
