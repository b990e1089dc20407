package classfile

const maxAnnotationDepth = 64

// attributes walks attribute table collecting referenced types
func (p *parser) attributes(r *reader) {
	count := int(r.u2())
	for i := 0; i < count && r.err == nil; i++ {
		name := p.pool.utf8(r, r.u2())
		length := int(r.u4())
		body := r.sub(length)
		if r.err != nil {
			return
		}
		p.attribute(name, body)
		r.merge(body)
	}
}

func (p *parser) attribute(name string, r *reader) {
	switch name {
	case "Signature":
		p.signature(r, r.u2())
	case "Exceptions":
		count := int(r.u2())
		for i := 0; i < count && r.err == nil; i++ {
			p.classReference(r, r.u2())
		}
	case "RuntimeVisibleAnnotations", "RuntimeInvisibleAnnotations":
		p.annotations(r)
	case "RuntimeVisibleParameterAnnotations", "RuntimeInvisibleParameterAnnotations":
		parameters := int(r.u1())
		for i := 0; i < parameters && r.err == nil; i++ {
			p.annotations(r)
		}
	case "RuntimeVisibleTypeAnnotations", "RuntimeInvisibleTypeAnnotations":
		count := int(r.u2())
		for i := 0; i < count && r.err == nil; i++ {
			p.typeAnnotation(r)
		}
	case "AnnotationDefault":
		p.elementValue(r, 0)
	case "Code":
		r.skip(4) // max_stack, max_locals
		r.skip(int(r.u4()))
		handlers := int(r.u2())
		for i := 0; i < handlers && r.err == nil; i++ {
			r.skip(6) // start_pc, end_pc, handler_pc
			if catchType := r.u2(); catchType != 0 {
				p.classReference(r, catchType)
			}
		}
		p.attributes(r)
	case "LocalVariableTable", "LocalVariableTypeTable":
		count := int(r.u2())
		for i := 0; i < count && r.err == nil; i++ {
			r.skip(6) // start_pc, length, name_index
			p.signature(r, r.u2())
			r.skip(2) // index
		}
	case "Record":
		count := int(r.u2())
		for i := 0; i < count && r.err == nil; i++ {
			r.skip(2) // name_index
			p.signature(r, r.u2())
			p.attributes(r)
		}
	}
}

func (p *parser) annotations(r *reader) {
	count := int(r.u2())
	for i := 0; i < count && r.err == nil; i++ {
		p.annotation(r, 0)
	}
}

func (p *parser) annotation(r *reader, depth int) {
	if depth > maxAnnotationDepth {
		r.failf("annotation nesting exceeds %d", maxAnnotationDepth)
		return
	}
	p.signature(r, r.u2())
	pairs := int(r.u2())
	for i := 0; i < pairs && r.err == nil; i++ {
		r.skip(2) // element_name_index
		p.elementValue(r, depth+1)
	}
}

func (p *parser) elementValue(r *reader, depth int) {
	if depth > maxAnnotationDepth {
		r.failf("element value nesting exceeds %d", maxAnnotationDepth)
		return
	}
	tag := r.u1()
	if r.err != nil {
		return
	}
	switch tag {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 's':
		r.skip(2)
	case 'e':
		p.signature(r, r.u2())
		r.skip(2) // const_name_index
	case 'c':
		p.signature(r, r.u2())
	case '@':
		p.annotation(r, depth+1)
	case '[':
		count := int(r.u2())
		for i := 0; i < count && r.err == nil; i++ {
			p.elementValue(r, depth+1)
		}
	default:
		r.failf("unknown element value tag %q", tag)
	}
}

func (p *parser) typeAnnotation(r *reader) {
	target := r.u1()
	switch {
	case target == 0x00 || target == 0x01: // type_parameter_target
		r.skip(1)
	case target == 0x10: // supertype_target
		r.skip(2)
	case target == 0x11 || target == 0x12: // type_parameter_bound_target
		r.skip(2)
	case target >= 0x13 && target <= 0x15: // empty_target
	case target == 0x16: // formal_parameter_target
		r.skip(1)
	case target == 0x17: // throws_target
		r.skip(2)
	case target == 0x40 || target == 0x41: // localvar_target
		r.skip(6 * int(r.u2()))
	case target == 0x42: // catch_target
		r.skip(2)
	case target >= 0x43 && target <= 0x46: // offset_target
		r.skip(2)
	case target >= 0x47 && target <= 0x4B: // type_argument_target
		r.skip(3)
	default:
		r.failf("unknown type annotation target 0x%02x", target)
		return
	}
	r.skip(2 * int(r.u1())) // type_path
	p.annotation(r, 0)
}
