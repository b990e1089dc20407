// Package classfiletest assembles class file bytes for tests.
package classfiletest

import (
	"bytes"
	"encoding/binary"
	"strings"
)

// Attribute represents a raw class file attribute
type Attribute struct {
	Name string
	Body []byte
}

// Member represents a field or a method
type Member struct {
	Name       string
	Descriptor string
	Attributes []Attribute
}

// Builder assembles a class file, pool entries are deduplicated
type Builder struct {
	Major      uint16
	Name       string // internal name
	Super      string // internal name, empty for none
	Interfaces []string
	Fields     []Member
	Methods    []Member
	Attributes []Attribute

	pool    bytes.Buffer
	next    uint16
	indexes map[string]uint16
}

// New creates builder of a class with supplied internal name extending java/lang/Object
func New(name string) *Builder {
	return &Builder{Major: 52, Name: name, Super: "java/lang/Object", next: 1, indexes: map[string]uint16{}}
}

func (b *Builder) lookup(key string, write func()) uint16 {
	if index, ok := b.indexes[key]; ok {
		return index
	}
	write()
	index := b.next
	b.next++
	b.indexes[key] = index
	return index
}

// Utf8 returns index of Utf8 constant
func (b *Builder) Utf8(text string) uint16 {
	return b.lookup("utf8:"+text, func() {
		b.pool.WriteByte(1)
		b.pool.Write(U2(uint16(len(text))))
		b.pool.WriteString(text)
	})
}

// Class returns index of Class constant
func (b *Builder) Class(internalName string) uint16 {
	nameIndex := b.Utf8(internalName)
	return b.lookup("class:"+internalName, func() {
		b.pool.WriteByte(7)
		b.pool.Write(U2(nameIndex))
	})
}

// NameAndType returns index of NameAndType constant
func (b *Builder) NameAndType(name, descriptor string) uint16 {
	nameIndex, descriptorIndex := b.Utf8(name), b.Utf8(descriptor)
	return b.lookup("nat:"+name+":"+descriptor, func() {
		b.pool.WriteByte(12)
		b.pool.Write(U2(nameIndex, descriptorIndex))
	})
}

// MethodRef returns index of Methodref constant
func (b *Builder) MethodRef(owner, name, descriptor string) uint16 {
	classIndex, natIndex := b.Class(owner), b.NameAndType(name, descriptor)
	return b.lookup("method:"+owner+"."+name+descriptor, func() {
		b.pool.WriteByte(10)
		b.pool.Write(U2(classIndex, natIndex))
	})
}

// MethodType returns index of MethodType constant
func (b *Builder) MethodType(descriptor string) uint16 {
	descriptorIndex := b.Utf8(descriptor)
	return b.lookup("mt:"+descriptor, func() {
		b.pool.WriteByte(16)
		b.pool.Write(U2(descriptorIndex))
	})
}

// Long adds Long constant, it occupies two pool entries
func (b *Builder) Long(value int64) uint16 {
	index := b.lookup("long:"+string(U4(uint32(value>>32), uint32(value))), func() {
		b.pool.WriteByte(5)
		b.pool.Write(U4(uint32(value>>32), uint32(value)))
	})
	b.next++
	return index
}

// Signature returns Signature attribute
func (b *Builder) Signature(signature string) Attribute {
	return Attribute{Name: "Signature", Body: U2(b.Utf8(signature))}
}

// Annotations returns RuntimeVisibleAnnotations attribute with marker annotations of supplied descriptors
func (b *Builder) Annotations(descriptors ...string) Attribute {
	body := U2(uint16(len(descriptors)))
	for _, descriptor := range descriptors {
		body = append(body, U2(b.Utf8(descriptor), 0)...)
	}
	return Attribute{Name: "RuntimeVisibleAnnotations", Body: body}
}

// Exceptions returns Exceptions attribute
func (b *Builder) Exceptions(internalNames ...string) Attribute {
	body := U2(uint16(len(internalNames)))
	for _, name := range internalNames {
		body = append(body, U2(b.Class(name))...)
	}
	return Attribute{Name: "Exceptions", Body: body}
}

// Bytes returns class file bytes
func (b *Builder) Bytes() []byte {
	thisIndex := b.Class(b.Name)
	var superIndex uint16
	if b.Super != "" {
		superIndex = b.Class(b.Super)
	}
	var body bytes.Buffer
	body.Write(U2(0x0021, thisIndex, superIndex, uint16(len(b.Interfaces))))
	for _, name := range b.Interfaces {
		body.Write(U2(b.Class(name)))
	}
	for _, members := range [][]Member{b.Fields, b.Methods} {
		body.Write(U2(uint16(len(members))))
		for _, member := range members {
			body.Write(U2(0x0001, b.Utf8(member.Name), b.Utf8(member.Descriptor)))
			b.writeAttributes(&body, member.Attributes)
		}
	}
	b.writeAttributes(&body, b.Attributes)

	var ret bytes.Buffer
	ret.Write(U4(0xCAFEBABE))
	ret.Write(U2(0, b.Major, b.next))
	ret.Write(b.pool.Bytes())
	ret.Write(body.Bytes())
	return ret.Bytes()
}

func (b *Builder) writeAttributes(buffer *bytes.Buffer, attributes []Attribute) {
	buffer.Write(U2(uint16(len(attributes))))
	for _, attribute := range attributes {
		buffer.Write(U2(b.Utf8(attribute.Name)))
		buffer.Write(U4(uint32(len(attribute.Body))))
		buffer.Write(attribute.Body)
	}
}

// SimpleClass returns bytes of a class whose constant pool names supplied internal names
func SimpleClass(name string, references ...string) []byte {
	builder := New(name)
	for _, reference := range references {
		builder.Class(reference)
	}
	return builder.Bytes()
}

// EntryName returns archive entry name of a class internal name
func EntryName(internalName string) string {
	return strings.TrimPrefix(internalName, "/") + ".class"
}

// U2 encodes big-endian 16 bit values
func U2(values ...uint16) []byte {
	ret := make([]byte, 0, 2*len(values))
	for _, value := range values {
		ret = binary.BigEndian.AppendUint16(ret, value)
	}
	return ret
}

// U4 encodes big-endian 32 bit values
func U4(values ...uint32) []byte {
	ret := make([]byte, 0, 4*len(values))
	for _, value := range values {
		ret = binary.BigEndian.AppendUint32(ret, value)
	}
	return ret
}
