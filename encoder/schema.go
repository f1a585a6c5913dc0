package encoder

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
)

// Snapshot field numbers, as declared in snapshot.proto.
const (
	fieldVersion     protowire.Number = 1
	fieldRows        protowire.Number = 2
	fieldCols        protowire.Number = 3
	fieldWalls       protowire.Number = 4
	fieldPath        protowire.Number = 5
	fieldAgent       protowire.Number = 6
	fieldDestination protowire.Number = 7
	fieldTick        protowire.Number = 8
	fieldGeneration  protowire.Number = 9
	fieldID          protowire.Number = 10
	fieldProbability protowire.Number = 11
	fieldStrategy    protowire.Number = 12
	fieldLastSwap    protowire.Number = 13
)

// Position field numbers.
const (
	fieldRow protowire.Number = 1
	fieldCol protowire.Number = 2
)

var snapshotMessage = mustSnapshotMessage()

// snapshotSchema mirrors snapshot.proto.
func snapshotSchema() *descriptorpb.FileDescriptorProto {
	const (
		optional = descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL
		repeated = descriptorpb.FieldDescriptorProto_LABEL_REPEATED

		typeInt64  = descriptorpb.FieldDescriptorProto_TYPE_INT64
		typeUint32 = descriptorpb.FieldDescriptorProto_TYPE_UINT32
		typeBytes  = descriptorpb.FieldDescriptorProto_TYPE_BYTES
		typeDouble = descriptorpb.FieldDescriptorProto_TYPE_DOUBLE
		typeString = descriptorpb.FieldDescriptorProto_TYPE_STRING
	)

	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("encoder/snapshot.proto"),
		Package: proto.String("drift"),
		Syntax:  proto.String("proto3"),
		Options: &descriptorpb.FileOptions{
			GoPackage: proto.String("github.com/beka-birhanu/vinom-drift/encoder"),
		},
		MessageType: []*descriptorpb.DescriptorProto{
			{
				Name: proto.String("Position"),
				Field: []*descriptorpb.FieldDescriptorProto{
					schemaField("row", fieldRow, optional, typeUint32),
					schemaField("col", fieldCol, optional, typeUint32),
				},
			},
			{
				Name: proto.String("Snapshot"),
				Field: []*descriptorpb.FieldDescriptorProto{
					schemaField("version", fieldVersion, optional, typeInt64),
					schemaField("rows", fieldRows, optional, typeUint32),
					schemaField("cols", fieldCols, optional, typeUint32),
					schemaField("walls", fieldWalls, repeated, typeUint32),
					schemaField("path", fieldPath, repeated, typeUint32),
					positionField("agent", fieldAgent),
					positionField("destination", fieldDestination),
					schemaField("tick", fieldTick, optional, typeInt64),
					schemaField("generation", fieldGeneration, optional, typeInt64),
					schemaField("id", fieldID, optional, typeBytes),
					schemaField("mutation_probability", fieldProbability, optional, typeDouble),
					schemaField("strategy", fieldStrategy, optional, typeString),
					schemaField("last_swap", fieldLastSwap, repeated, typeUint32),
				},
			},
		},
	}
}

func schemaField(
	name string,
	num protowire.Number,
	label descriptorpb.FieldDescriptorProto_Label,
	typ descriptorpb.FieldDescriptorProto_Type,
) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(int32(num)),
		Label:  label.Enum(),
		Type:   typ.Enum(),
	}
}

func positionField(name string, num protowire.Number) *descriptorpb.FieldDescriptorProto {
	f := schemaField(name, num, descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL, descriptorpb.FieldDescriptorProto_TYPE_MESSAGE)
	f.TypeName = proto.String(".drift.Position")
	return f
}

func mustSnapshotMessage() protoreflect.MessageDescriptor {
	file, err := protodesc.NewFile(snapshotSchema(), nil)
	if err != nil {
		panic(fmt.Sprintf("encoder: invalid snapshot schema: %v", err))
	}
	return file.Messages().ByName("Snapshot")
}

func snapshotField(num protowire.Number) protoreflect.FieldDescriptor {
	return snapshotMessage.Fields().ByNumber(num)
}
