package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/abgdnv/stockroom/internal/inventory"
	ierrors "github.com/abgdnv/stockroom/internal/inventory/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// formatVersion is written into every encoded document.
const formatVersion = 1

// Codec converts the item sequence to and from bytes.
type Codec interface {
	Encode(items []inventory.Item) ([]byte, error)
	Decode(data []byte) ([]inventory.Item, error)
}

// NewCodec returns the codec registered under format ("json" or "binary").
func NewCodec(format string) (Codec, error) {
	switch format {
	case "", FormatJSON:
		return JSONCodec{}, nil
	case FormatBinary:
		return BinaryCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown storage format: %q", format)
	}
}

const (
	FormatJSON   = "json"
	FormatBinary = "binary"
)

// JSONCodec writes a versioned JSON document.
// Prices are stored as strings in shortest round-trip form so NaN and infinities survive.
type JSONCodec struct{}

type jsonDocument struct {
	Version int          `json:"version"`
	Items   []jsonRecord `json:"items"`
}

type jsonRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

func (JSONCodec) Encode(items []inventory.Item) ([]byte, error) {
	doc := jsonDocument{
		Version: formatVersion,
		Items:   make([]jsonRecord, len(items)),
	}
	for i, item := range items {
		doc.Items[i] = jsonRecord{
			ID:       item.ID,
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    strconv.FormatFloat(item.Price, 'g', -1, 64),
		}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode inventory: %w", err)
	}
	return data, nil
}

func (JSONCodec) Decode(data []byte) ([]inventory.Item, error) {
	var doc jsonDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ierrors.ErrFormatMismatch, err)
	}
	if doc.Version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ierrors.ErrFormatMismatch, doc.Version)
	}
	items := make([]inventory.Item, len(doc.Items))
	for i, rec := range doc.Items {
		price, err := strconv.ParseFloat(rec.Price, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d price %q", ierrors.ErrFormatMismatch, i, rec.Price)
		}
		items[i] = inventory.NewItem(rec.ID, rec.Name, rec.Quantity, price)
	}
	return items, nil
}

// binaryMagic starts every BinaryCodec document.
var binaryMagic = []byte("STKR")

// Field numbers of one encoded item.
const (
	fieldID       protowire.Number = 1
	fieldName     protowire.Number = 2
	fieldQuantity protowire.Number = 3
	fieldPrice    protowire.Number = 4
)

// BinaryCodec writes the magic, a varint version and then one
// length-delimited protobuf-wire message per item.
type BinaryCodec struct{}

func (BinaryCodec) Encode(items []inventory.Item) ([]byte, error) {
	buf := append([]byte{}, binaryMagic...)
	buf = protowire.AppendVarint(buf, formatVersion)
	for _, item := range items {
		var msg []byte
		msg = protowire.AppendTag(msg, fieldID, protowire.BytesType)
		msg = protowire.AppendString(msg, item.ID)
		msg = protowire.AppendTag(msg, fieldName, protowire.BytesType)
		msg = protowire.AppendString(msg, item.Name)
		msg = protowire.AppendTag(msg, fieldQuantity, protowire.VarintType)
		msg = protowire.AppendVarint(msg, protowire.EncodeZigZag(int64(item.Quantity)))
		msg = protowire.AppendTag(msg, fieldPrice, protowire.Fixed64Type)
		msg = protowire.AppendFixed64(msg, math.Float64bits(item.Price))
		buf = protowire.AppendBytes(buf, msg)
	}
	return buf, nil
}

func (BinaryCodec) Decode(data []byte) ([]inventory.Item, error) {
	if !bytes.HasPrefix(data, binaryMagic) {
		return nil, fmt.Errorf("%w: missing magic", ierrors.ErrFormatMismatch)
	}
	data = data[len(binaryMagic):]
	version, n := protowire.ConsumeVarint(data)
	if n < 0 {
		return nil, fmt.Errorf("%w: %v", ierrors.ErrFormatMismatch, protowire.ParseError(n))
	}
	if version != formatVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ierrors.ErrFormatMismatch, version)
	}
	data = data[n:]

	items := make([]inventory.Item, 0)
	for len(data) > 0 {
		msg, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: item %d: %v", ierrors.ErrFormatMismatch, len(items), protowire.ParseError(n))
		}
		item, err := decodeItem(msg)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", ierrors.ErrFormatMismatch, len(items), err)
		}
		items = append(items, item)
		data = data[n:]
	}
	return items, nil
}

func decodeItem(msg []byte) (inventory.Item, error) {
	var item inventory.Item
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if n < 0 {
			return item, protowire.ParseError(n)
		}
		msg = msg[n:]
		switch {
		case num == fieldID && typ == protowire.BytesType:
			item.ID, n = protowire.ConsumeString(msg)
		case num == fieldName && typ == protowire.BytesType:
			item.Name, n = protowire.ConsumeString(msg)
		case num == fieldQuantity && typ == protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(msg)
			item.Quantity = int(protowire.DecodeZigZag(v))
		case num == fieldPrice && typ == protowire.Fixed64Type:
			var v uint64
			v, n = protowire.ConsumeFixed64(msg)
			item.Price = math.Float64frombits(v)
		default:
			n = protowire.ConsumeFieldValue(num, typ, msg)
		}
		if n < 0 {
			return item, protowire.ParseError(n)
		}
		msg = msg[n:]
	}
	return item, nil
}
