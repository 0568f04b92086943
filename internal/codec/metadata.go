package codec

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

var (
	jpegExifHeader = []byte("Exif\x00\x00")
	jpegICCHeader  = []byte("ICC_PROFILE\x00")
	pngSignature   = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
)

// Максимальные размеры полезной нагрузки сегментов JPEG.
const (
	maxJPEGSegment = 65535 - 2
	maxICCChunk    = maxJPEGSegment - 14
)

// ErrUnsupportedMetadata возвращается для форматов без поддержки переноса метаданных.
var ErrUnsupportedMetadata = errors.New("формат не поддерживает перенос метаданных")

// Metadata - встроенные блоки метаданных, которые переносятся в выходной файл.
type Metadata struct {
	// EXIF - TIFF-структура EXIF без префикса "Exif\0\0".
	EXIF []byte

	// ICC - цветовой профиль.
	ICC []byte
}

// Empty сообщает, что переносить нечего. Безопасен для nil.
func (m *Metadata) Empty() bool {
	return m == nil || (len(m.EXIF) == 0 && len(m.ICC) == 0)
}

// ExtractMetadata достаёт EXIF и ICC профиль из исходного файла.
// format - имя формата от декодера.
func ExtractMetadata(data []byte, format string) (*Metadata, error) {
	switch format {
	case "jpeg":
		return extractJPEG(data)
	case "png":
		return extractPNG(data)
	case "webp":
		return extractWebP(data)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedMetadata, format)
}

// extractJPEG проходит по сегментам до начала скана.
func extractJPEG(data []byte) (*Metadata, error) {
	if len(data) < 4 || data[0] != 0xff || data[1] != 0xd8 {
		return nil, errors.New("invalid JPEG SOI")
	}

	meta := &Metadata{}
	iccChunks := make(map[byte][]byte)
	var iccCount byte

	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xff {
			return nil, fmt.Errorf("повреждённый маркер JPEG на смещении %d", pos)
		}
		marker := data[pos+1]

		if marker == 0xff { // заполняющие байты
			pos++
			continue
		}
		if marker == 0x01 || (marker >= 0xd0 && marker <= 0xd7) {
			pos += 2
			continue
		}
		if marker == 0xda || marker == 0xd9 { // SOS или EOI
			break
		}

		segLen := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if segLen < 2 || pos+2+segLen > len(data) {
			return nil, errors.New("invalid JPEG segment length")
		}
		payload := data[pos+4 : pos+2+segLen]

		switch marker {
		case 0xe1:
			if meta.EXIF == nil && bytes.HasPrefix(payload, jpegExifHeader) {
				meta.EXIF = bytes.Clone(payload[len(jpegExifHeader):])
			}
		case 0xe2:
			if bytes.HasPrefix(payload, jpegICCHeader) && len(payload) >= len(jpegICCHeader)+2 {
				seq := payload[len(jpegICCHeader)]
				iccCount = payload[len(jpegICCHeader)+1]
				iccChunks[seq] = payload[len(jpegICCHeader)+2:]
			}
		}

		pos += 2 + segLen
	}

	if len(iccChunks) > 0 {
		var icc bytes.Buffer
		for seq := 1; seq <= int(iccCount); seq++ {
			chunk, ok := iccChunks[byte(seq)]
			if !ok {
				return meta, fmt.Errorf("ICC профиль неполный: нет части %d из %d", seq, iccCount)
			}
			icc.Write(chunk)
		}
		meta.ICC = icc.Bytes()
	}

	return meta, nil
}

// extractPNG читает чанки eXIf и iCCP.
func extractPNG(data []byte) (*Metadata, error) {
	if !bytes.HasPrefix(data, pngSignature) {
		return nil, errors.New("invalid PNG signature")
	}

	meta := &Metadata{}
	pos := len(pngSignature)
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		chunkName := string(data[pos+4 : pos+8])
		start := pos + 8
		end := start + length
		if length < 0 || end+4 > len(data) {
			return nil, fmt.Errorf("повреждённый чанк PNG %q", chunkName)
		}
		chunk := data[start:end]

		switch chunkName {
		case "eXIf":
			meta.EXIF = bytes.Clone(chunk)
		case "iCCP":
			icc, err := decodeICCP(chunk)
			if err != nil {
				return meta, err
			}
			meta.ICC = icc
		}

		if chunkName == "IEND" {
			break
		}
		pos = end + 4
	}

	return meta, nil
}

// decodeICCP распаковывает чанк iCCP: имя\0 метод zlib-данные.
func decodeICCP(chunk []byte) ([]byte, error) {
	idx := bytes.IndexByte(chunk, 0)
	if idx <= 0 || idx+2 > len(chunk) {
		return nil, errors.New("повреждённый чанк iCCP")
	}

	zr, err := zlib.NewReader(bytes.NewReader(chunk[idx+2:]))
	if err != nil {
		return nil, fmt.Errorf("iCCP: %w", err)
	}
	defer func() { _ = zr.Close() }()

	icc, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("iCCP: %w", err)
	}
	return icc, nil
}

// extractWebP читает RIFF чанки EXIF и ICCP.
func extractWebP(data []byte) (*Metadata, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		return nil, errors.New("invalid WebP header")
	}

	meta := &Metadata{}
	pos := 12
	for pos+8 <= len(data) {
		fourcc := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		start := pos + 8
		end := start + size
		if size < 0 || end > len(data) {
			return nil, fmt.Errorf("повреждённый чанк WebP %q", fourcc)
		}

		switch fourcc {
		case "EXIF":
			meta.EXIF = bytes.Clone(bytes.TrimPrefix(data[start:end], jpegExifHeader))
		case "ICCP":
			meta.ICC = bytes.Clone(data[start:end])
		}

		pos = end + size%2
	}

	return meta, nil
}

// InjectJPEG вставляет сегменты APP1 (EXIF) и APP2 (ICC) сразу после SOI
// (или после APP0, если он есть).
func InjectJPEG(data []byte, meta *Metadata) ([]byte, error) {
	if len(data) < 4 || data[0] != 0xff || data[1] != 0xd8 {
		return nil, errors.New("invalid JPEG SOI")
	}
	if meta.Empty() {
		return data, nil
	}

	insertAt := 2
	if data[2] == 0xff && data[3] == 0xe0 && len(data) >= 6 {
		insertAt = 4 + int(binary.BigEndian.Uint16(data[4:6]))
		if insertAt > len(data) {
			return nil, errors.New("invalid JPEG APP0 length")
		}
	}

	var segments bytes.Buffer

	if len(meta.EXIF) > 0 {
		payload := append(bytes.Clone(jpegExifHeader), meta.EXIF...)
		if len(payload) > maxJPEGSegment {
			return nil, fmt.Errorf("EXIF слишком большой: %d байт", len(meta.EXIF))
		}
		writeJPEGSegment(&segments, 0xe1, payload)
	}

	if len(meta.ICC) > 0 {
		count := (len(meta.ICC) + maxICCChunk - 1) / maxICCChunk
		if count > 255 {
			return nil, fmt.Errorf("ICC профиль слишком большой: %d байт", len(meta.ICC))
		}
		for i := 0; i < count; i++ {
			start := i * maxICCChunk
			end := min(start+maxICCChunk, len(meta.ICC))

			payload := make([]byte, 0, len(jpegICCHeader)+2+end-start)
			payload = append(payload, jpegICCHeader...)
			payload = append(payload, byte(i+1), byte(count))
			payload = append(payload, meta.ICC[start:end]...)
			writeJPEGSegment(&segments, 0xe2, payload)
		}
	}

	out := make([]byte, 0, len(data)+segments.Len())
	out = append(out, data[:insertAt]...)
	out = append(out, segments.Bytes()...)
	out = append(out, data[insertAt:]...)
	return out, nil
}

func writeJPEGSegment(buf *bytes.Buffer, marker byte, payload []byte) {
	buf.Write([]byte{0xff, marker})
	_ = binary.Write(buf, binary.BigEndian, uint16(len(payload)+2))
	buf.Write(payload)
}

// InjectPNG вставляет чанки iCCP и eXIf сразу после IHDR.
func InjectPNG(data []byte, meta *Metadata) ([]byte, error) {
	const ihdrEnd = 8 + 4 + 4 + 13 + 4
	if !bytes.HasPrefix(data, pngSignature) || len(data) < ihdrEnd || string(data[12:16]) != "IHDR" {
		return nil, errors.New("invalid PNG header")
	}
	if meta.Empty() {
		return data, nil
	}

	var chunks bytes.Buffer

	if len(meta.ICC) > 0 {
		var payload bytes.Buffer
		payload.WriteString("ICC Profile")
		payload.Write([]byte{0, 0}) // терминатор имени и метод сжатия (deflate)
		zw := zlib.NewWriter(&payload)
		if _, err := zw.Write(meta.ICC); err != nil {
			return nil, fmt.Errorf("iCCP: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("iCCP: %w", err)
		}
		writePNGChunk(&chunks, "iCCP", payload.Bytes())
	}

	if len(meta.EXIF) > 0 {
		writePNGChunk(&chunks, "eXIf", meta.EXIF)
	}

	out := make([]byte, 0, len(data)+chunks.Len())
	out = append(out, data[:ihdrEnd]...)
	out = append(out, chunks.Bytes()...)
	out = append(out, data[ihdrEnd:]...)
	return out, nil
}

func writePNGChunk(buf *bytes.Buffer, name string, payload []byte) {
	_ = binary.Write(buf, binary.BigEndian, uint32(len(payload)))

	crc := crc32.NewIEEE()
	_, _ = crc.Write([]byte(name))
	_, _ = crc.Write(payload)

	buf.WriteString(name)
	buf.Write(payload)
	_ = binary.Write(buf, binary.BigEndian, crc.Sum32())
}
