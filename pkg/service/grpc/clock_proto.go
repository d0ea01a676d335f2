// Copyright 2026 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grpc

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

const (
	protoPackage = "eam2011.crg"
	protoFile    = "eam2011/crg/clock.proto"
)

// clockFile describes the ClockService messages. It is registered with the
// global registry so the reflection service can hand it out.
var clockFile protoreflect.FileDescriptor

func init() {
	fd, err := protodesc.NewFile(clockFileProto(), protoregistry.GlobalFiles)
	if err != nil {
		panic(err)
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		panic(err)
	}
	clockFile = fd
}

func field(name string, num int32, typ descriptorpb.FieldDescriptorProto_Type) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(num),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   typ.Enum(),
	}
}

func message(name string, fields ...*descriptorpb.FieldDescriptorProto) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{Name: proto.String(name), Field: fields}
}

func method(name, in, out string) *descriptorpb.MethodDescriptorProto {
	return &descriptorpb.MethodDescriptorProto{
		Name:       proto.String(name),
		InputType:  proto.String("." + protoPackage + "." + in),
		OutputType: proto.String("." + protoPackage + "." + out),
	}
}

func clockFileProto() *descriptorpb.FileDescriptorProto {
	const (
		str  = descriptorpb.FieldDescriptorProto_TYPE_STRING
		u32  = descriptorpb.FieldDescriptorProto_TYPE_UINT32
		flag = descriptorpb.FieldDescriptorProto_TYPE_BOOL
	)
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String(protoFile),
		Package: proto.String(protoPackage),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			message("ClockRequest", field("clock", 1, str)),
			message("FrequencyResponse", field("clock", 1, str), field("hz", 2, u32)),
			message("ParentRequest", field("clock", 1, str), field("parent", 2, str)),
			message("ParentResponse", field("clock", 1, str), field("parent", 2, str)),
			message("DividerResponse", field("clock", 1, str), field("ratio", 2, u32)),
			message("EnableRequest", field("clock", 1, str), field("enable", 2, flag)),
			message("Empty"),
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("ClockService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				method("GetFrequency", "ClockRequest", "FrequencyResponse"),
				method("GetParent", "ClockRequest", "ParentResponse"),
				method("SetParent", "ParentRequest", "Empty"),
				method("GetDivider", "ClockRequest", "DividerResponse"),
				method("EnableClock", "EnableRequest", "Empty"),
			},
		}},
	}
}

// wireMessage converts between the Go message structs and their protobuf
// form.
type wireMessage interface {
	toWire() *dynamicpb.Message
	fromWire(*dynamicpb.Message)
}

func newWire(name protoreflect.Name) *dynamicpb.Message {
	return dynamicpb.NewMessage(clockFile.Messages().ByName(name))
}

func set(m *dynamicpb.Message, name protoreflect.Name, v protoreflect.Value) {
	m.Set(m.Descriptor().Fields().ByName(name), v)
}

func get(m *dynamicpb.Message, name protoreflect.Name) protoreflect.Value {
	return m.Get(m.Descriptor().Fields().ByName(name))
}

func (r *ClockRequest) toWire() *dynamicpb.Message {
	m := newWire("ClockRequest")
	set(m, "clock", protoreflect.ValueOfString(r.Clock))
	return m
}

func (r *ClockRequest) fromWire(m *dynamicpb.Message) {
	r.Clock = get(m, "clock").String()
}

func (r *FrequencyResponse) toWire() *dynamicpb.Message {
	m := newWire("FrequencyResponse")
	set(m, "clock", protoreflect.ValueOfString(r.Clock))
	set(m, "hz", protoreflect.ValueOfUint32(r.Hz))
	return m
}

func (r *FrequencyResponse) fromWire(m *dynamicpb.Message) {
	r.Clock = get(m, "clock").String()
	r.Hz = uint32(get(m, "hz").Uint())
}

func (r *ParentRequest) toWire() *dynamicpb.Message {
	m := newWire("ParentRequest")
	set(m, "clock", protoreflect.ValueOfString(r.Clock))
	set(m, "parent", protoreflect.ValueOfString(r.Parent))
	return m
}

func (r *ParentRequest) fromWire(m *dynamicpb.Message) {
	r.Clock = get(m, "clock").String()
	r.Parent = get(m, "parent").String()
}

func (r *ParentResponse) toWire() *dynamicpb.Message {
	m := newWire("ParentResponse")
	set(m, "clock", protoreflect.ValueOfString(r.Clock))
	set(m, "parent", protoreflect.ValueOfString(r.Parent))
	return m
}

func (r *ParentResponse) fromWire(m *dynamicpb.Message) {
	r.Clock = get(m, "clock").String()
	r.Parent = get(m, "parent").String()
}

func (r *DividerResponse) toWire() *dynamicpb.Message {
	m := newWire("DividerResponse")
	set(m, "clock", protoreflect.ValueOfString(r.Clock))
	set(m, "ratio", protoreflect.ValueOfUint32(r.Ratio))
	return m
}

func (r *DividerResponse) fromWire(m *dynamicpb.Message) {
	r.Clock = get(m, "clock").String()
	r.Ratio = uint32(get(m, "ratio").Uint())
}

func (r *EnableRequest) toWire() *dynamicpb.Message {
	m := newWire("EnableRequest")
	set(m, "clock", protoreflect.ValueOfString(r.Clock))
	set(m, "enable", protoreflect.ValueOfBool(r.Enable))
	return m
}

func (r *EnableRequest) fromWire(m *dynamicpb.Message) {
	r.Clock = get(m, "clock").String()
	r.Enable = get(m, "enable").Bool()
}

func (*Empty) toWire() *dynamicpb.Message  { return newWire("Empty") }
func (*Empty) fromWire(*dynamicpb.Message) {}
