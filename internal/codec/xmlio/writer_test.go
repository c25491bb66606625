package xmlio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/attrkit/internal/attribute"
	"github.com/conduit-lang/attrkit/internal/category"
	"github.com/conduit-lang/attrkit/internal/logger"
	"github.com/conduit-lang/attrkit/internal/resource"
)

type fixture struct {
	res   *attribute.Resource
	model *resource.Generic
	face  *resource.GenericComponent
}

func buildFixture(t *testing.T) fixture {
	t.Helper()
	r := attribute.NewResource(uuid.New())
	r.SetName("materials")
	r.AddCategory("fluid")
	r.AddCategory("solid")
	r.SetAdvanceLevelLabel(1, "Advanced")
	r.AddUniqueRole(5)

	cfd, err := r.Analyses().Create("CFD")
	require.NoError(t, err)
	cfd.SetRequired(true)
	cfd.AddCategory("fluid")
	_, err = r.Analyses().Create("LES")
	require.NoError(t, err)
	require.NoError(t, r.Analyses().SetParent("LES", "CFD"))

	physics, err := r.CreateDefinition("Physics", "")
	require.NoError(t, err)
	physics.SetIsAbstract(true)

	material, err := r.CreateDefinition("Material", "Physics")
	require.NoError(t, err)
	material.SetLabel("A Material")
	material.SetIsUnique(true)
	material.SetBriefDescription("bulk properties")
	material.SetCategoryInheritanceMode(category.And)
	material.LocalCategories().InsertInclusion("solid")
	material.Tags().Add(category.NewTag("solver", "cg", "gmres"))
	material.Tags().Add(category.NewTag("internal"))
	rule := material.CreateLocalAssociationRule()
	rule.SetAcceptsEntry("model.Resource", "face", true)

	density := attribute.NewDoubleItemDefinition("density")
	density.SetUnits("kg/m^3")
	require.NoError(t, density.SetMinRange(0.0, true))
	require.NoError(t, density.SetDefaultValue(1.0))
	density.LocalCategories().InsertInclusion("fluid")
	require.NoError(t, material.AddItemDefinition(density))

	kind := attribute.NewStringItemDefinition("kind")
	require.NoError(t, kind.AddDiscreteValue("Steel", "steel"))
	require.NoError(t, kind.AddDiscreteValue("Water", "water"))
	kind.SetDiscreteValueCategories(1, []string{"fluid"})
	hardness := attribute.NewIntItemDefinition("hardness")
	require.NoError(t, kind.AddChildItemDefinition(hardness))
	require.NoError(t, kind.AddConditionalItem("Steel", "hardness"))
	require.NoError(t, kind.SetDefaultDiscreteIndex(0))
	require.NoError(t, material.AddItemDefinition(kind))

	layers := attribute.NewGroupItemDefinition("layers")
	layers.SetIsExtensible(true)
	layers.SetCommonSubGroupLabel("layer")
	require.NoError(t, layers.AddItemDefinition(attribute.NewIntItemDefinition("count")))
	require.NoError(t, material.AddItemDefinition(layers))

	verbose := attribute.NewVoidItemDefinition("verbose")
	verbose.SetIsOptional(true)
	verbose.SetIsEnabledByDefault(true)
	require.NoError(t, material.AddItemDefinition(verbose))

	surface := attribute.NewReferenceItemDefinition("surface", attribute.ComponentKind)
	surface.SetAcceptsEntry("model.Resource", "face", true)
	surface.SetLockType(attribute.LockRead)
	require.NoError(t, material.AddItemDefinition(surface))

	fluid, err := r.CreateDefinition("Fluid", "")
	require.NoError(t, err)
	require.NoError(t, material.AddExclusion(fluid))
	boundary, err := r.CreateDefinition("Boundary", "")
	require.NoError(t, err)
	require.NoError(t, boundary.AddPrerequisite(material))

	model := resource.NewGeneric(uuid.New(), "model.Resource", "geometry.smtk", "resource.Resource")
	face := model.AddComponent(uuid.New(), "face 1", "face")

	steel, err := r.CreateAttribute("steel", "Material")
	require.NoError(t, err)
	steel.SetLocalAdvanceLevel(attribute.AdvanceWrite, 1)
	require.NoError(t, steel.FindValue("density").SetValue(0, 7.8))
	require.NoError(t, steel.FindValue("kind").ChildItem("hardness").(*attribute.ValueItem).SetValue(0, 5))
	require.NoError(t, steel.FindGroup("layers").SetNumberOfGroups(2))
	require.NoError(t, steel.FindGroup("layers").FindInGroup(1, "count").(*attribute.ValueItem).SetValue(0, 3))
	steel.FindVoid("verbose").SetIsEnabled(false)
	require.NoError(t, steel.FindReference("surface").SetObject(0, face))
	require.NoError(t, steel.Associate(face))
	r.AssociateResource(model)

	return fixture{res: r, model: model, face: face}
}

func roundTrip(t *testing.T, r *attribute.Resource) (*attribute.Resource, string) {
	t.Helper()
	out, err := WriteString(r)
	require.NoError(t, err)

	back := attribute.NewResource(uuid.Nil)
	log := logger.New()
	require.NoError(t, ReadString(out, back, log))
	assert.Equal(t, 0, log.Count(logger.Warning), "%v", log.Records())
	return back, out
}

func TestWrite_AlwaysVersion3(t *testing.T) {
	fx := buildFixture(t)
	doc := Document(fx.res)

	root := doc.SelectElement(RootElement)
	require.NotNil(t, root)
	assert.Equal(t, "3", root.SelectAttrValue("Version", ""))
	assert.Equal(t, fx.res.ID().String(), root.SelectAttrValue("ID", ""))

	var order []string
	for _, c := range root.ChildElements() {
		order = append(order, c.Tag)
	}
	assert.Equal(t, []string{
		"Categories", "Analyses", "AdvanceLevels", "Definitions", "Exclusions",
		"Prerequisites", "Attributes", "UniqueRoles", "Associations",
	}, order)
}

func TestWrite_RoundTrip(t *testing.T) {
	fx := buildFixture(t)
	back, out := roundTrip(t, fx.res)

	assert.Equal(t, fx.res.ID(), back.ID())
	assert.Equal(t, []string{"fluid", "solid"}, back.Categories())
	assert.Equal(t, "Advanced", back.AdvanceLevelLabel(1))
	assert.Equal(t, []resource.Role{5}, back.UniqueRoles())
	assert.Same(t, back.Analyses().Find("CFD"), back.Analyses().Find("LES").Parent())

	material := back.FindDefinition("Material")
	require.NotNil(t, material)
	assert.Same(t, back.FindDefinition("Physics"), material.BaseDefinition())
	assert.True(t, material.IsUnique())
	assert.Equal(t, "bulk properties", material.BriefDescription())
	assert.Equal(t, category.And, material.CategoryInheritanceMode())
	solver, ok := material.Tags().Find("solver")
	require.True(t, ok)
	assert.Equal(t, []string{"cg", "gmres"}, solver.Values())
	assert.True(t, material.IsExclusive(back.FindDefinition("Fluid")))
	assert.Equal(t, []*attribute.Definition{material}, back.FindDefinition("Boundary").Prerequisites())

	kind, ok := material.FindItemDefinition("kind").(*attribute.ValueItemDefinition)
	require.True(t, ok)
	assert.Equal(t, 0, kind.DefaultDiscreteIndex())
	assert.Equal(t, []string{"hardness"}, kind.ConditionalItems("Steel"))
	assert.Equal(t, []string{"fluid"}, kind.DiscreteValues()[1].Categories)

	steel := back.FindAttribute("steel")
	require.NotNil(t, steel)
	assert.Equal(t, fx.res.FindAttribute("steel").ID(), steel.ID())
	assert.Equal(t, 7.8, steel.FindValue("density").Float(0))
	assert.Equal(t, "steel", steel.FindValue("kind").Text(0))
	assert.Equal(t, int64(5), steel.FindValue("kind").ChildItem("hardness").(*attribute.ValueItem).Int(0))
	assert.Equal(t, 2, steel.FindGroup("layers").NumberOfGroups())
	assert.Equal(t, int64(3), steel.FindGroup("layers").FindInGroup(1, "count").(*attribute.ValueItem).Int(0))
	assert.False(t, steel.FindVoid("verbose").LocalEnabled())

	assert.True(t, steel.IsObjectAssociated(fx.face.ID()))
	require.Len(t, back.AssociatedResources(), 1)
	assert.Equal(t, fx.model.ID(), back.AssociatedResources()[0].Surrogate.ID)

	again, err := WriteString(back)
	require.NoError(t, err)
	assert.Equal(t, out, again, "writing a read document reproduces it")
}

func TestWrite_ReferencesResolveAfterLoad(t *testing.T) {
	fx := buildFixture(t)
	back, _ := roundTrip(t, fx.res)

	item := back.FindAttribute("steel").FindReference("surface")
	obj := item.Object(0)
	require.True(t, obj.Found)
	assert.False(t, obj.IsResolved())
	assert.Equal(t, "geometry.smtk", obj.Unresolved.Surrogate.Location)

	manager := resource.NewManager()
	require.NoError(t, manager.Register(fx.model))
	back.SetFinder(manager)

	obj = item.Object(0)
	require.True(t, obj.IsResolved())
	assert.Same(t, fx.face, obj.Object)
}

func TestWrite_UpgradesVersion1(t *testing.T) {
	res, _ := readDoc(t, `
<SMTK_AttributeResource Version="1">
  <Definitions>
    <AttDef Type="Material">
      <ItemDefinitions>
        <AttributeRef Name="partner"><AttDef>Material</AttDef></AttributeRef>
      </ItemDefinitions>
    </AttDef>
  </Definitions>
  <Attributes>
    <Att Name="water" Type="Material">
      <Items><AttributeRef Name="partner"><Val>steel</Val></AttributeRef></Items>
    </Att>
    <Att Name="steel" Type="Material"/>
  </Attributes>
</SMTK_AttributeResource>`)

	back, out := roundTrip(t, res)
	assert.True(t, strings.Contains(out, `<Component Name="partner"`))
	assert.False(t, strings.Contains(out, "AttributeRef"))

	obj := back.FindAttribute("water").FindReference("partner").Object(0)
	require.True(t, obj.IsResolved())
	assert.Same(t, back.FindAttribute("steel"), obj.Object)
}

func TestWrite_ValueForms(t *testing.T) {
	r := attribute.NewResource(uuid.New())
	def, err := r.CreateDefinition("Grid", "")
	require.NoError(t, err)
	single := attribute.NewIntItemDefinition("single")
	many := attribute.NewIntItemDefinition("many")
	many.SetNumberOfRequiredValues(0)
	many.SetIsExtensible(true)
	require.NoError(t, def.AddItemDefinition(single))
	require.NoError(t, def.AddItemDefinition(many))

	att, err := r.CreateAttribute("grid", "Grid")
	require.NoError(t, err)
	require.NoError(t, att.FindValue("many").AppendValue(4))
	require.NoError(t, att.FindValue("many").SetNumberOfValues(2))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, r))
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))

	items := doc.FindElement("//Att/Items")
	require.NotNil(t, items)
	s := items.SelectElement("Int")
	require.NotNil(t, s)
	assert.Equal(t, "single", s.SelectAttrValue("Name", ""))
	assert.NotNil(t, s.SelectElement("UnsetVal"), "an unset single value is marked explicitly")

	m := items.FindElement("Int[@Name='many']")
	require.NotNil(t, m)
	assert.Equal(t, "2", m.SelectAttrValue("NumberOfValues", ""))
	vals := m.SelectElement("Values").ChildElements()
	require.Len(t, vals, 2)
	assert.Equal(t, "Val", vals[0].Tag)
	assert.Equal(t, "4", vals[0].Text())
	assert.Equal(t, "UnsetVal", vals[1].Tag)
	assert.Equal(t, "1", vals[1].SelectAttrValue("Ith", ""))
}

func TestWriteFile_ReadFile(t *testing.T) {
	fx := buildFixture(t)
	path := filepath.Join(t.TempDir(), "materials.sbi")
	require.NoError(t, WriteFile(path, fx.res))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)

	back := attribute.NewResource(uuid.Nil)
	require.NoError(t, ReadFile(path, back, nil))
	assert.Equal(t, path, back.Location())
	assert.NotNil(t, back.FindAttribute("steel"))
}
