package backup

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Format version constants.
const (
	// FormatV1 is a plain indented JSON payload.
	FormatV1 = 1
	// FormatV2 is a JSON header line followed by a gzip-compressed payload.
	FormatV2 = 2
)

// MaxDecompressedSize bounds the payload read from any backup (200MB).
const MaxDecompressedSize = 200 * 1024 * 1024

// BackupHeader is the plain-text first line of a V2 backup file.
type BackupHeader struct {
	Version    int               `json:"version"`
	CreatedAt  time.Time         `json:"created_at"`
	Checksum   string            `json:"checksum"`
	RunCount   int               `json:"run_count"`
	FrameCount int               `json:"frame_count"`
	Compressed bool              `json:"compressed"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// DetectFormat reads the first line of a file to tell V1 from V2.
func DetectFormat(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("reading first line: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, fmt.Errorf("file is empty")
	}

	var header BackupHeader
	if err := json.Unmarshal([]byte(line), &header); err == nil && header.Version == FormatV2 {
		return FormatV2, nil
	}
	if line[0] == '{' {
		return FormatV1, nil
	}
	return 0, fmt.Errorf("unrecognized backup format")
}

// Read loads a backup in either format. V2 checksums are verified.
func Read(path string) (*BackupFormat, error) {
	version, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if version == FormatV2 {
		return ReadV2(path)
	}
	return ReadV1(path)
}

// WriteV1 writes b as indented JSON.
func WriteV1(path string, b *BackupFormat) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return nil
}

// ReadV1 reads a plain JSON backup.
func ReadV1(path string) (*BackupFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxDecompressedSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading backup: %w", err)
	}
	if int64(len(data)) > MaxDecompressedSize {
		return nil, fmt.Errorf("backup exceeds maximum size of %d bytes", MaxDecompressedSize)
	}

	var b BackupFormat
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing backup data: %w", err)
	}
	return &b, nil
}

// WriteV2 writes b as a header line followed by the gzip-compressed payload.
func WriteV2(path string, b *BackupFormat) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	var compressed bytes.Buffer
	gzw, err := gzip.NewWriterLevel(&compressed, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("creating gzip writer: %w", err)
	}
	if _, err := gzw.Write(payload); err != nil {
		return fmt.Errorf("compressing payload: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("closing gzip writer: %w", err)
	}

	header := BackupHeader{
		Version:    FormatV2,
		CreatedAt:  b.CreatedAt,
		Checksum:   checksum(compressed.Bytes()),
		RunCount:   len(b.Runs),
		FrameCount: b.FrameCount(),
		Compressed: true,
	}
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("marshaling header: %w", err)
	}

	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	w.Write(headerBytes)
	w.WriteByte('\n')
	w.Write(compressed.Bytes())
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing backup: %w", err)
	}
	return f.Close()
}

// ReadV2 reads a V2 backup, verifies its checksum and decompresses it.
func ReadV2(path string) (*BackupFormat, error) {
	header, compressed, err := readV2Parts(path)
	if err != nil {
		return nil, err
	}
	if actual := checksum(compressed); actual != header.Checksum {
		return nil, fmt.Errorf("checksum mismatch: expected %s, got %s", header.Checksum, actual)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gzr.Close()

	decompressed, err := io.ReadAll(io.LimitReader(gzr, MaxDecompressedSize+1))
	if err != nil {
		return nil, fmt.Errorf("decompressing payload: %w", err)
	}
	if int64(len(decompressed)) > MaxDecompressedSize {
		return nil, fmt.Errorf("decompressed payload exceeds maximum size of %d bytes", MaxDecompressedSize)
	}

	var b BackupFormat
	if err := json.Unmarshal(decompressed, &b); err != nil {
		return nil, fmt.Errorf("parsing backup data: %w", err)
	}
	return &b, nil
}

// ReadV2Header reads only the header line of a V2 backup.
func ReadV2Header(path string) (*BackupHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return readHeader(bufio.NewReader(f))
}

// VerifyChecksum checks a V2 backup's payload against its header.
func VerifyChecksum(path string) error {
	header, compressed, err := readV2Parts(path)
	if err != nil {
		return err
	}
	if actual := checksum(compressed); actual != header.Checksum {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", header.Checksum, actual)
	}
	return nil
}

func readV2Parts(path string) (*BackupHeader, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	header, err := readHeader(reader)
	if err != nil {
		return nil, nil, err
	}
	compressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("reading compressed payload: %w", err)
	}
	return header, compressed, nil
}

func readHeader(r *bufio.Reader) (*BackupHeader, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("reading header line: %w", err)
	}

	var header BackupHeader
	if err := json.Unmarshal(bytes.TrimSpace(line), &header); err != nil {
		return nil, fmt.Errorf("parsing header: %w", err)
	}
	if header.Version != FormatV2 {
		return nil, fmt.Errorf("expected V2 format, got version %d", header.Version)
	}
	return &header, nil
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}
