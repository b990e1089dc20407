package classfile

import (
	"fmt"
	"strings"

	"github.com/viant/depsense/inspector/graph"
)

const (
	magic = 0xCAFEBABE

	// MinMajorVersion is the oldest supported class file format (JDK 1.1)
	MinMajorVersion = 45
	// MaxMajorVersion is the newest supported class file format (Java 25)
	MaxMajorVersion = 69

	accModule = 0x8000
)

// ClassFile represents structural metadata of a compiled class
type ClassFile struct {
	MajorVersion uint16
	MinorVersion uint16
	AccessFlags  uint16
	Name         string   // binary name, e.g. com.x.Outer$Inner
	SuperName    string   // empty for java.lang.Object and module descriptors
	Interfaces   []string // binary names
	References   graph.ClassSet
}

// IsModule returns true for module-info descriptors
func (c *ClassFile) IsModule() bool {
	return c.AccessFlags&accModule != 0
}

type options struct {
	maxMajor uint16
}

// Option customises parsing
type Option func(o *options)

// WithMaxMajorVersion sets newest accepted class file format
func WithMaxMajorVersion(version int) Option {
	return func(o *options) {
		if version > 0 {
			o.maxMajor = uint16(version)
		}
	}
}

type parser struct {
	pool *constantPool
	refs graph.ClassSet
}

// Parse parses class file bytes and collects every class it references, including itself
func Parse(data []byte, opts ...Option) (*ClassFile, error) {
	o := &options{maxMajor: MaxMajorVersion}
	for _, opt := range opts {
		opt(o)
	}
	r := newReader(data)
	if value := r.u4(); r.err == nil && value != magic {
		return nil, fmt.Errorf("%w: bad magic 0x%08X", ErrMalformed, value)
	}
	ret := &ClassFile{}
	ret.MinorVersion = r.u2()
	ret.MajorVersion = r.u2()
	if r.err != nil {
		return nil, r.err
	}
	if ret.MajorVersion < MinMajorVersion || ret.MajorVersion > o.maxMajor {
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedVersion, ret.MajorVersion, ret.MinorVersion)
	}

	p := &parser{pool: readConstantPool(r), refs: make(graph.ClassSet)}
	if r.err != nil {
		return nil, r.err
	}
	p.constants(r)

	ret.AccessFlags = r.u2()
	ret.Name = BinaryName(p.pool.className(r, r.u2()))
	if super := r.u2(); super != 0 {
		ret.SuperName = BinaryName(p.pool.className(r, super))
	}
	count := int(r.u2())
	for i := 0; i < count && r.err == nil; i++ {
		ret.Interfaces = append(ret.Interfaces, BinaryName(p.pool.className(r, r.u2())))
	}
	p.members(r) // fields
	p.members(r) // methods
	p.attributes(r)
	if r.err != nil {
		return nil, r.err
	}
	if r.remaining() > 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, r.remaining())
	}
	ret.References = p.refs
	return ret, nil
}

// constants collects classes named by Class, NameAndType and MethodType constants
func (p *parser) constants(r *reader) {
	for i := range p.pool.entries {
		entry := &p.pool.entries[i]
		switch entry.tag {
		case tagClass:
			p.classReference(r, uint16(i))
		case tagNameAndType:
			p.signature(r, entry.index2)
		case tagMethodType:
			p.signature(r, entry.index1)
		}
		if r.err != nil {
			return
		}
	}
}

func (p *parser) members(r *reader) {
	count := int(r.u2())
	for i := 0; i < count && r.err == nil; i++ {
		r.skip(4) // access_flags, name_index
		p.signature(r, r.u2())
		p.attributes(r)
	}
}

// classReference adds class named by Class constant, unwrapping array descriptors
func (p *parser) classReference(r *reader, index uint16) {
	name := p.pool.className(r, index)
	if r.err != nil {
		return
	}
	if strings.HasPrefix(name, "[") {
		p.parse(r, name)
		return
	}
	if name == "" {
		r.failf("empty class name at constant %d", index)
		return
	}
	p.add(name)
}

// signature adds classes named by descriptor or generic signature stored at index
func (p *parser) signature(r *reader, index uint16) {
	text := p.pool.utf8(r, index)
	if r.err != nil {
		return
	}
	p.parse(r, text)
}

func (p *parser) parse(r *reader, text string) {
	if err := parseSignature(text, p.add); err != nil && r.err == nil {
		r.err = err
	}
}

func (p *parser) add(internalName string) {
	p.refs.Add(BinaryName(internalName))
}

// BinaryName converts internal name (a/b/C$D) into binary name (a.b.C$D)
func BinaryName(internalName string) string {
	return strings.ReplaceAll(internalName, "/", ".")
}

// IsDescriptorClass returns true for synthetic per-package and per-module descriptor classes
func IsDescriptorClass(binaryName string) bool {
	simple := binaryName[strings.LastIndexByte(binaryName, '.')+1:]
	return simple == "module-info" || simple == "package-info"
}
