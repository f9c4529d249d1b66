package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const testSegmentsXSD = `<?xml version="1.0" encoding="UTF-8"?>
<xsd:schema xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns="urn:hl7-org:v2xml" targetNamespace="urn:hl7-org:v2xml">
  <xsd:complexType name="MSH.CONTENT">
    <xsd:sequence>
      <xsd:element ref="MSH.1" minOccurs="1" maxOccurs="1"/>
      <xsd:element ref="MSH.2" minOccurs="1" maxOccurs="1"/>
      <xsd:element ref="MSH.3" minOccurs="0" maxOccurs="1"/>
      <xsd:element ref="MSH.4" minOccurs="0" maxOccurs="1"/>
      <xsd:element ref="MSH.5" minOccurs="0" maxOccurs="1"/>
      <xsd:element ref="MSH.6" minOccurs="0" maxOccurs="1"/>
      <xsd:element ref="MSH.7" minOccurs="0" maxOccurs="1"/>
      <xsd:element ref="MSH.8" minOccurs="0" maxOccurs="1"/>
      <xsd:element ref="MSH.9" minOccurs="1" maxOccurs="1"/>
      <xsd:element ref="MSH.10" minOccurs="1" maxOccurs="1"/>
      <xsd:element ref="MSH.11" minOccurs="1" maxOccurs="1"/>
      <xsd:element ref="MSH.12" minOccurs="1" maxOccurs="1"/>
    </xsd:sequence>
  </xsd:complexType>
  <xsd:complexType name="EVN.CONTENT">
    <xsd:sequence>
      <xsd:element ref="EVN.1" minOccurs="1" maxOccurs="1"/>
      <xsd:element ref="EVN.2" minOccurs="1" maxOccurs="1"/>
    </xsd:sequence>
  </xsd:complexType>
  <xsd:complexType name="PID.CONTENT">
    <xsd:sequence>
      <xsd:element ref="PID.1" minOccurs="0" maxOccurs="1"/>
      <xsd:element ref="PID.2" minOccurs="0" maxOccurs="1"/>
      <xsd:element ref="PID.3" minOccurs="1" maxOccurs="unbounded"/>
      <xsd:element ref="PID.4" minOccurs="0" maxOccurs="1"/>
      <xsd:element ref="PID.5" minOccurs="1" maxOccurs="1"/>
      <xsd:element ref="PID.6" minOccurs="0" maxOccurs="1"/>
      <xsd:element ref="PID.7" minOccurs="0" maxOccurs="1"/>
      <xsd:element ref="PID.8" minOccurs="0" maxOccurs="1"/>
    </xsd:sequence>
  </xsd:complexType>
  <xsd:complexType name="NK1.CONTENT">
    <xsd:sequence>
      <xsd:element ref="NK1.1" minOccurs="1" maxOccurs="1"/>
      <xsd:element ref="NK1.2" minOccurs="0" maxOccurs="1"/>
    </xsd:sequence>
  </xsd:complexType>
  <xsd:complexType name="IN1.CONTENT">
    <xsd:sequence>
      <xsd:element ref="IN1.1" minOccurs="1" maxOccurs="1"/>
      <xsd:element ref="IN1.2" minOccurs="0" maxOccurs="1"/>
    </xsd:sequence>
  </xsd:complexType>
  <xsd:complexType name="IN2.CONTENT">
    <xsd:sequence>
      <xsd:element ref="IN2.1" minOccurs="0" maxOccurs="1"/>
    </xsd:sequence>
  </xsd:complexType>
  <xsd:complexType name="OBX.CONTENT">
    <xsd:sequence>
      <xsd:element ref="OBX.1" minOccurs="0" maxOccurs="1"/>
      <xsd:element ref="OBX.2" minOccurs="0" maxOccurs="1"/>
      <xsd:element ref="OBX.3" minOccurs="1" maxOccurs="1"/>
      <xsd:element ref="OBX.4" minOccurs="0" maxOccurs="1"/>
      <xsd:element ref="OBX.5" minOccurs="0" maxOccurs="unbounded"/>
    </xsd:sequence>
  </xsd:complexType>
</xsd:schema>`

const testFieldsXSD = `<?xml version="1.0" encoding="UTF-8"?>
<xsd:schema xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns="urn:hl7-org:v2xml" targetNamespace="urn:hl7-org:v2xml">
  <xsd:attributeGroup name="MSH.1.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ST"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="MSH.2.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ST"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="MSH.3.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="HD"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="MSH.4.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="HD"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="MSH.5.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="HD"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="MSH.6.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="HD"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="MSH.7.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="TS"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="MSH.8.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ST"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="MSH.9.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="CM_MSG"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="MSH.10.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ST"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="MSH.11.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ID"/>
    <xsd:attribute name="Table" type="xsd:string" fixed="HL70103"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="MSH.12.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ID"/>
    <xsd:attribute name="Table" type="xsd:string" fixed="HL70104"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="EVN.1.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ID"/>
    <xsd:attribute name="Table" type="xsd:string" fixed="HL70003"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="EVN.2.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="TS"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="PID.1.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="SI"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="PID.2.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="CX"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="PID.3.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="CX"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="PID.4.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="CX"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="PID.5.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="XPN"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="PID.6.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="XPN"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="PID.7.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="DT"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="PID.8.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="IS"/>
    <xsd:attribute name="Table" type="xsd:string" fixed="HL70001"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="NK1.1.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="SI"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="NK1.2.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="XPN"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="IN1.1.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="SI"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="IN1.2.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="CE"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="IN2.1.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="CX"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="OBX.1.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="SI"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="OBX.2.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ID"/>
    <xsd:attribute name="Table" type="xsd:string" fixed="HL70125"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="OBX.3.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="CE"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="OBX.4.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ST"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="OBX.5.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="varies"/>
  </xsd:attributeGroup>
</xsd:schema>`

const testDataTypesXSD = `<?xml version="1.0" encoding="UTF-8"?>
<xsd:schema xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns="urn:hl7-org:v2xml" targetNamespace="urn:hl7-org:v2xml">
  <xsd:complexType name="ST"/>
  <xsd:complexType name="ID"/>
  <xsd:complexType name="IS"/>
  <xsd:complexType name="SI"/>
  <xsd:complexType name="NM"/>
  <xsd:complexType name="DT"/>
  <xsd:complexType name="DTM"/>
  <xsd:complexType name="TM"/>
  <xsd:complexType name="TX"/>
  <xsd:complexType name="FT">
    <xsd:sequence>
      <xsd:element ref="escape" minOccurs="0" maxOccurs="unbounded"/>
    </xsd:sequence>
  </xsd:complexType>
  <xsd:complexType name="HD">
    <xsd:sequence>
      <xsd:element ref="HD.1" minOccurs="0"/>
      <xsd:element ref="HD.2" minOccurs="0"/>
      <xsd:element ref="HD.3" minOccurs="0"/>
    </xsd:sequence>
  </xsd:complexType>
  <xsd:complexType name="CX">
    <xsd:sequence>
      <xsd:element ref="CX.1" minOccurs="1"/>
      <xsd:element ref="CX.2" minOccurs="0"/>
      <xsd:element ref="CX.3" minOccurs="0"/>
      <xsd:element ref="CX.4" minOccurs="0"/>
      <xsd:element ref="CX.5" minOccurs="0"/>
    </xsd:sequence>
  </xsd:complexType>
  <xsd:complexType name="FN">
    <xsd:sequence>
      <xsd:element ref="FN.1" minOccurs="1"/>
    </xsd:sequence>
  </xsd:complexType>
  <xsd:complexType name="XPN">
    <xsd:sequence>
      <xsd:element ref="XPN.1" minOccurs="0"/>
      <xsd:element ref="XPN.2" minOccurs="0"/>
      <xsd:element ref="XPN.3" minOccurs="0"/>
    </xsd:sequence>
  </xsd:complexType>
  <xsd:complexType name="TS">
    <xsd:sequence>
      <xsd:element ref="TS.1" minOccurs="1"/>
      <xsd:element ref="TS.2" minOccurs="0"/>
    </xsd:sequence>
  </xsd:complexType>
  <xsd:complexType name="CM_MSG">
    <xsd:sequence>
      <xsd:element ref="CM_MSG.1" minOccurs="1"/>
      <xsd:element ref="CM_MSG.2" minOccurs="0"/>
      <xsd:element ref="CM_MSG.3" minOccurs="0"/>
    </xsd:sequence>
  </xsd:complexType>
  <xsd:complexType name="CE">
    <xsd:sequence>
      <xsd:element ref="CE.1" minOccurs="0"/>
      <xsd:element ref="CE.2" minOccurs="0"/>
      <xsd:element ref="CE.3" minOccurs="0"/>
      <xsd:element ref="CE.4" minOccurs="0"/>
      <xsd:element ref="CE.5" minOccurs="0"/>
      <xsd:element ref="CE.6" minOccurs="0"/>
    </xsd:sequence>
  </xsd:complexType>
  <xsd:attributeGroup name="HD.1.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="IS"/>
    <xsd:attribute name="Table" type="xsd:string" fixed="HL70300"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="HD.2.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ST"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="HD.3.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ID"/>
    <xsd:attribute name="Table" type="xsd:string" fixed="HL70301"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="CX.1.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ST"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="CX.2.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ST"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="CX.3.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ID"/>
    <xsd:attribute name="Table" type="xsd:string" fixed="HL70061"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="CX.4.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="HD"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="CX.5.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ID"/>
    <xsd:attribute name="Table" type="xsd:string" fixed="HL70203"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="FN.1.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ST"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="XPN.1.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="FN"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="XPN.2.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ST"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="XPN.3.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ST"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="TS.1.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="DTM"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="TS.2.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ID"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="CM_MSG.1.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ID"/>
    <xsd:attribute name="Table" type="xsd:string" fixed="HL70076"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="CM_MSG.2.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ID"/>
    <xsd:attribute name="Table" type="xsd:string" fixed="HL70003"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="CM_MSG.3.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ID"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="CE.1.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ST"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="CE.2.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ST"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="CE.3.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ST"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="CE.4.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ST"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="CE.5.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ST"/>
  </xsd:attributeGroup>
  <xsd:attributeGroup name="CE.6.ATTRIBUTES">
    <xsd:attribute name="Type" type="xsd:string" fixed="ST"/>
  </xsd:attributeGroup>
</xsd:schema>`

const testADTA01XSD = `<?xml version="1.0" encoding="UTF-8"?>
<xsd:schema xmlns:xsd="http://www.w3.org/2001/XMLSchema" xmlns="urn:hl7-org:v2xml" targetNamespace="urn:hl7-org:v2xml">
  <xsd:complexType name="ADT_A01.CONTENT">
    <xsd:sequence>
      <xsd:element ref="MSH" minOccurs="1" maxOccurs="1"/>
      <xsd:element ref="EVN" minOccurs="1" maxOccurs="1"/>
      <xsd:element ref="PID" minOccurs="1" maxOccurs="1"/>
      <xsd:element ref="NK1" minOccurs="0" maxOccurs="unbounded"/>
      <xsd:element ref="ADT_A01.INSURANCE" minOccurs="0" maxOccurs="unbounded"/>
      <xsd:element ref="OBX" minOccurs="0" maxOccurs="unbounded"/>
    </xsd:sequence>
  </xsd:complexType>
  <xsd:complexType name="ADT_A01.INSURANCE.CONTENT">
    <xsd:sequence>
      <xsd:element ref="IN1" minOccurs="1" maxOccurs="1"/>
      <xsd:element ref="IN2" minOccurs="0" maxOccurs="1"/>
    </xsd:sequence>
  </xsd:complexType>
</xsd:schema>`

// writeTestSchemaDir lays out a minimal schema directory for loader tests.
func writeTestSchemaDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	xsdDir := filepath.Join(dir, "xsd")
	if err := os.MkdirAll(xsdDir, 0o755); err != nil {
		t.Fatal(err)
	}

	files := map[string]string{
		"segments.xsd":  testSegmentsXSD,
		"fields.xsd":    testFieldsXSD,
		"datatypes.xsd": testDataTypesXSD,
		"ADT_A01.xsd":   testADTA01XSD,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(xsdDir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadSegments(t *testing.T) {
	m, err := Load(writeTestSchemaDir(t), 8)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	pid, ok := m.SegmentDef("PID")
	if !ok {
		t.Fatal("PID segment definition missing")
	}
	if len(pid.Fields) != 8 {
		t.Fatalf("PID has %d field rules; want 8", len(pid.Fields))
	}

	f3 := pid.Fields[2]
	if f3.Ref != "PID.3" || f3.Type != "CX" {
		t.Errorf("PID.3 rule = %+v", f3)
	}
	if f3.Min != 1 || !f3.Repeatable() {
		t.Errorf("PID.3 cardinality = [%d,%d]", f3.Min, f3.Max)
	}

	f8 := pid.Fields[7]
	if f8.Table != "HL70001" {
		t.Errorf("PID.8 table = %q; want HL70001", f8.Table)
	}
	if f8.Repeatable() {
		t.Error("PID.8 should not be repeatable")
	}
}

func TestLoadDataTypes(t *testing.T) {
	m, err := Load(writeTestSchemaDir(t), 8)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cx, ok := m.DataType("CX")
	if !ok {
		t.Fatal("CX data type missing")
	}
	if cx.Primitive() {
		t.Error("CX should be composite")
	}
	if len(cx.Components) != 5 {
		t.Fatalf("CX has %d components; want 5", len(cx.Components))
	}
	if cx.Components[3].Type != "HD" {
		t.Errorf("CX.4 type = %q; want HD", cx.Components[3].Type)
	}
	if cx.Components[2].Table != "HL70061" {
		t.Errorf("CX.3 table = %q; want HL70061", cx.Components[2].Table)
	}
	if cx.Components[0].Min != 1 {
		t.Errorf("CX.1 min = %d; want 1", cx.Components[0].Min)
	}

	st, ok := m.DataType("ST")
	if !ok || !st.Primitive() {
		t.Error("ST should be a primitive data type")
	}

	// FT declares a sequence in the schema but stays primitive.
	ft, ok := m.DataType("FT")
	if !ok || !ft.Primitive() {
		t.Error("FT should be treated as primitive")
	}
}

func TestLoadStructure(t *testing.T) {
	m, err := Load(writeTestSchemaDir(t), 8)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s, err := m.Structure("ADT_A01")
	if err != nil {
		t.Fatalf("Structure() error = %v", err)
	}

	if s.Root == nil || len(s.Root.Nodes) != 6 {
		t.Fatalf("root group = %+v", s.Root)
	}

	msh := s.Root.Nodes[0]
	if msh.Kind != KindSegment || msh.Ref != "MSH" || msh.Min != 1 || msh.Max != 1 {
		t.Errorf("MSH node = %+v", msh)
	}

	nk1 := s.Root.Nodes[3]
	if !nk1.Unbounded() || nk1.Min != 0 {
		t.Errorf("NK1 node = %+v", nk1)
	}

	ins := s.Root.Nodes[4]
	if ins.Kind != KindGroup || ins.Ref != "ADT_A01.INSURANCE" {
		t.Errorf("insurance node = %+v", ins)
	}

	group, ok := s.Group("ADT_A01.INSURANCE")
	if !ok {
		t.Fatal("insurance group missing from arena")
	}
	if len(group.Nodes) != 2 || group.Nodes[0].Ref != "IN1" {
		t.Errorf("insurance group nodes = %+v", group.Nodes)
	}
}

func TestStructureCached(t *testing.T) {
	dir := writeTestSchemaDir(t)
	m, err := Load(dir, 8)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	a, err := m.Structure("ADT_A01")
	if err != nil {
		t.Fatal(err)
	}

	// Remove the source document; the cached grammar must keep serving.
	if err := os.Remove(filepath.Join(dir, "xsd", "ADT_A01.xsd")); err != nil {
		t.Fatal(err)
	}

	b, err := m.Structure("ADT_A01")
	if err != nil {
		t.Fatalf("cached Structure() error = %v", err)
	}
	if a != b {
		t.Error("Structure() did not return the cached grammar")
	}
}

func TestStructureUnknown(t *testing.T) {
	m, err := Load(writeTestSchemaDir(t), 8)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	_, err = m.Structure("ZZZ_Z99")
	if !errors.Is(err, ErrUnknownStructure) {
		t.Errorf("Structure(ZZZ_Z99) error = %v; want ErrUnknownStructure", err)
	}
}

func TestLoadMissingXSDDir(t *testing.T) {
	if _, err := Load(t.TempDir(), 8); err == nil {
		t.Error("Load without xsd subfolder should fail")
	}
}
