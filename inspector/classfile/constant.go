package classfile

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// constant pool tags
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

type constant struct {
	tag    uint8
	index1 uint16 // Class name, NameAndType name, MethodType descriptor, ref class
	index2 uint16 // NameAndType descriptor, ref name and type
	text   string // Utf8 value
}

// constantPool represents a parsed class file constant pool, entry 0 is unused
type constantPool struct {
	entries []constant
}

func readConstantPool(r *reader) *constantPool {
	count := int(r.u2())
	pool := &constantPool{entries: make([]constant, count)}
	for i := 1; i < count && r.err == nil; i++ {
		entry := constant{tag: r.u1()}
		switch entry.tag {
		case tagUtf8:
			length := int(r.u2())
			entry.text = decodeModifiedUTF8(r.bytes(length))
		case tagInteger, tagFloat:
			r.skip(4)
		case tagLong, tagDouble:
			r.skip(8)
			pool.entries[i] = entry
			i++ // eight byte constants take two entries
			continue
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			entry.index1 = r.u2()
		case tagFieldref, tagMethodref, tagInterfaceMethodref, tagNameAndType, tagDynamic, tagInvokeDynamic:
			entry.index1 = r.u2()
			entry.index2 = r.u2()
		case tagMethodHandle:
			r.skip(1)
			entry.index1 = r.u2()
		default:
			r.failf("unknown constant pool tag %d at entry %d", entry.tag, i)
		}
		pool.entries[i] = entry
	}
	return pool
}

func (p *constantPool) entry(r *reader, index uint16, tag uint8) *constant {
	if index == 0 || int(index) >= len(p.entries) {
		r.failf("constant pool index %d out of range", index)
		return nil
	}
	ret := &p.entries[index]
	if ret.tag != tag {
		r.failf("constant pool entry %d has tag %d, expected %d", index, ret.tag, tag)
		return nil
	}
	return ret
}

func (p *constantPool) utf8(r *reader, index uint16) string {
	if entry := p.entry(r, index, tagUtf8); entry != nil {
		return entry.text
	}
	return ""
}

// className returns internal name referenced by Class constant
func (p *constantPool) className(r *reader, index uint16) string {
	if entry := p.entry(r, index, tagClass); entry != nil {
		return p.utf8(r, entry.index1)
	}
	return ""
}

// decodeModifiedUTF8 decodes JVM modified UTF-8 (two byte NUL, surrogate pairs as separate sequences)
func decodeModifiedUTF8(data []byte) string {
	ascii := true
	for _, b := range data {
		if b >= 0x80 {
			ascii = false
			break
		}
	}
	if ascii {
		return string(data)
	}
	units := make([]uint16, 0, len(data))
	for i := 0; i < len(data); {
		b := data[i]
		switch {
		case b < 0x80:
			units = append(units, uint16(b))
			i++
		case b&0xE0 == 0xC0 && i+1 < len(data):
			units = append(units, uint16(b&0x1F)<<6|uint16(data[i+1]&0x3F))
			i += 2
		case b&0xF0 == 0xE0 && i+2 < len(data):
			units = append(units, uint16(b&0x0F)<<12|uint16(data[i+1]&0x3F)<<6|uint16(data[i+2]&0x3F))
			i += 3
		default:
			units = append(units, utf8.RuneError)
			i++
		}
	}
	builder := strings.Builder{}
	for _, r := range utf16.Decode(units) {
		builder.WriteRune(r)
	}
	return builder.String()
}
