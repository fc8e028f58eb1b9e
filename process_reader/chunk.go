package process_reader

import (
	"sort"

	"crusadermem/process"
	"crusadermem/process_codec"
)

// fieldRequest is one offset of a chunk read together with its type and
// its position in the caller's request
type fieldRequest struct {
	index  int
	offset process.ProcessMemorySize
	typ    process_codec.SemanticType
}

func (f fieldRequest) end() process.ProcessMemorySize {
	return f.offset + f.typ.Width()
}

// ReadChunk reads a value of type t at every offset from base using a single
// transfer. Results are returned in the order of offsets.
func (r *Reader) ReadChunk(name string, base process.ProcessMemoryAddress, offsets []process.ProcessMemorySize, t process_codec.SemanticType) ([]process_codec.Value, error) {
	types := make([]process_codec.SemanticType, len(offsets))
	for i := range types {
		types[i] = t
	}
	return r.ReadChunkTypes(name, base, offsets, types)
}

// ReadChunkTypes reads a value of types[i] at every offsets[i] from base using
// a single transfer. Results are returned in the order of offsets; either every
// value is returned or none is.
func (r *Reader) ReadChunkTypes(name string, base process.ProcessMemoryAddress, offsets []process.ProcessMemorySize, types []process_codec.SemanticType) ([]process_codec.Value, error) {
	fields, err := pairRequests(offsets, types)
	if err != nil {
		return nil, err
	}

	span := spanLength(fields)
	if err := checkSpan(base, span); err != nil {
		return nil, err
	}
	r.log.Debugln("Reading", len(fields), "fields from", base.ToString(), "in one span of", span.ToString())

	var values []process_codec.Value
	err = process.WithProcessByName(r.helper, name, func(proc process.Process) error {
		data, err := readExact(proc, name, base, span)
		if err != nil {
			return err
		}

		values, err = decodeFields(fields, data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// pairRequests validates a chunk request and pairs each offset with its type
func pairRequests(offsets []process.ProcessMemorySize, types []process_codec.SemanticType) ([]fieldRequest, error) {
	if len(offsets) == 0 {
		return nil, process.InvalidRequest("offsets must not be empty")
	}
	if len(types) != len(offsets) {
		return nil, process.InvalidRequest("got %d types for %d offsets", len(types), len(offsets))
	}

	fields := make([]fieldRequest, len(offsets))
	for i, offset := range offsets {
		if !types[i].Valid() {
			return nil, process.InvalidRequest("unknown semantic type %d at position %d", int(types[i]), i)
		}
		if offset > ^process.ProcessMemorySize(0)-types[i].Width() {
			return nil, process.InvalidRequest("offset 0x%X at position %d overflows with a %s", uint(offset), i, types[i])
		}
		fields[i] = fieldRequest{index: i, offset: offset, typ: types[i]}
	}
	return fields, nil
}

// spanLength returns the number of bytes from the base address that covers
// every field in full: the end of the highest-offset field, extended when a
// wider field at a lower offset reaches further.
func spanLength(fields []fieldRequest) process.ProcessMemorySize {
	sorted := make([]fieldRequest, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].offset < sorted[j].offset
	})

	span := sorted[len(sorted)-1].end()
	for _, field := range sorted {
		if end := field.end(); end > span {
			span = end
		}
	}
	return span
}

// decodeFields decodes every field out of the shared span buffer, in request order
func decodeFields(fields []fieldRequest, data []byte) ([]process_codec.Value, error) {
	values := make([]process_codec.Value, len(fields))
	for _, field := range fields {
		if field.end() > process.ProcessMemorySize(len(data)) {
			return nil, process.InvalidRequest("field at offset 0x%X ends past the %d byte span", uint(field.offset), len(data))
		}
		v, err := process_codec.Decode(field.typ, data[field.offset:field.end()])
		if err != nil {
			return nil, err
		}
		values[field.index] = v
	}
	return values, nil
}
