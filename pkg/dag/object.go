package dag

import (
	"bytes"
	"io"

	"github.com/sleepymurph/dmv/pkg/objectkey"
	"github.com/sleepymurph/dmv/pkg/vcserrors"
)

// Object is implemented by the four stored kinds. EncodeContent writes only
// the content that follows the 12-byte header; ContentSize must match the
// number of bytes EncodeContent writes.
type Object interface {
	Type() ObjectType
	ContentSize() uint64
	EncodeContent(w io.Writer) error
}

// Encode writes header and content for obj to w, returning the object's key.
// Every object write in the store goes through this so the returned key is
// exactly the key the object can later be looked up by.
func Encode(obj Object, w io.Writer) (objectkey.Key, error) {
	hw := objectkey.NewHashWriter(w)
	header := Header{Type: obj.Type(), ContentSize: obj.ContentSize()}
	if err := header.Encode(hw); err != nil {
		return objectkey.Key{}, err
	}
	if err := obj.EncodeContent(hw); err != nil {
		return objectkey.Key{}, err
	}
	return hw.Sum(), nil
}

// EncodeToBytes encodes obj into an in-memory buffer and returns its bytes
// plus key, for callers that need the serialized form before writing it.
func EncodeToBytes(obj Object) ([]byte, objectkey.Key, error) {
	var buf bytes.Buffer
	key, err := Encode(obj, &buf)
	if err != nil {
		return nil, objectkey.Key{}, err
	}
	return buf.Bytes(), key, nil
}

// Decode reads a header and dispatches to the matching kind's decoder. r
// must be positioned at the start of an object (header included). Blob
// content is read fully into memory; callers that want to stream a large
// blob's bytes without buffering should read the header themselves and copy
// ContentSize bytes directly instead of calling Decode.
func Decode(r io.Reader) (Object, Header, error) {
	header, err := DecodeHeader(r)
	if err != nil {
		return nil, Header{}, err
	}
	obj, err := DecodeContent(header, r)
	return obj, header, err
}

// DecodeContent dispatches on an already-read header and decodes the
// object's content from r, which must be positioned immediately after the
// header. Used by callers (such as an on-disk object handle) that read the
// header separately before deciding how to handle the content.
func DecodeContent(header Header, r io.Reader) (Object, error) {
	content := io.LimitReader(r, int64(header.ContentSize))
	switch header.Type {
	case TypeBlob:
		return decodeBlobContent(content, header.ContentSize)
	case TypeChunkedBlob:
		return decodeChunkedBlobContent(content)
	case TypeTree:
		return decodeTreeContent(content, header.ContentSize)
	case TypeCommit:
		return decodeCommitContent(content, header.ContentSize)
	default:
		return nil, vcserrors.New(vcserrors.CodeBadObjectHeader,
			"unknown object type tag: "+string(header.Type))
	}
}
