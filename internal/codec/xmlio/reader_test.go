package xmlio

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/attrkit/internal/attribute"
	"github.com/conduit-lang/attrkit/internal/category"
	"github.com/conduit-lang/attrkit/internal/logger"
)

func readDoc(t *testing.T, doc string) (*attribute.Resource, *logger.Logger) {
	t.Helper()
	res := attribute.NewResource(uuid.New())
	log := logger.New()
	require.NoError(t, ReadString(doc, res, log))
	return res, log
}

func TestRead_FatalDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "malformed", doc: `<SMTK_AttributeResource Version=3/>`},
		{name: "wrong root", doc: `<Resource Version="3"/>`},
		{name: "missing version", doc: `<SMTK_AttributeResource/>`},
		{name: "unsupported version", doc: `<SMTK_AttributeResource Version="9"/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := logger.New()
			err := ReadString(tt.doc, attribute.NewResource(uuid.New()), log)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDocumentFatal))
			assert.Equal(t, 1, log.Count(logger.Fatal))
		})
	}
}

func TestHandlers_NewestFirst(t *testing.T) {
	handlers := Handlers()
	require.Len(t, handlers, 3)
	assert.Equal(t, 3, handlers[0].Version)
	assert.Equal(t, 1, handlers[2].Version)
}

func TestRead_PermissiveScalars(t *testing.T) {
	res, log := readDoc(t, `
<SMTK_AttributeResource Version=" 3 ">
  <Definitions>
    <AttDef Type="Part" Abstract="yes" Unique="0" Nodal="T" Version="abc"/>
  </Definitions>
</SMTK_AttributeResource>`)

	def := res.FindDefinition("Part")
	require.NotNil(t, def)
	assert.True(t, def.IsAbstract())
	assert.False(t, def.IsUnique())
	assert.True(t, def.IsNodal())
	assert.Equal(t, 0, def.Version())
	assert.Equal(t, 0, log.Count(logger.Warning))
}

func TestRead_Version1(t *testing.T) {
	res, log := readDoc(t, `
<SMTK_AttributeResource Version="1">
  <Categories><Cat>Fluid</Cat><Cat>Solid</Cat></Categories>
  <AdvanceLevels><Level Label="Basic">0</Level><Level Label="Expert">1</Level></AdvanceLevels>
  <Definitions>
    <AttDef Type="Material" Label="A Material" AdvanceLevel="1">
      <AssociationsDef Name="MaterialAssociations" NumberOfRequiredValues="0" Extensible="true">
        <MembershipMask>face</MembershipMask>
      </AssociationsDef>
      <ItemDefinitions>
        <Double Name="density" CategoryCheckMode="All">
          <Categories><Cat>Fluid</Cat><Cat>Solid</Cat></Categories>
        </Double>
        <String Name="note">
          <DefaultValue>hello</DefaultValue>
        </String>
        <AttributeRef Name="partner"><AttDef>Material</AttDef></AttributeRef>
      </ItemDefinitions>
    </AttDef>
  </Definitions>
  <Attributes>
    <Att Name="water" Type="Material">
      <Items>
        <Double Name="density">1.5</Double>
        <String Name="note"></String>
        <AttributeRef Name="partner"><Val>steel</Val></AttributeRef>
      </Items>
    </Att>
    <Att Name="steel" Type="Material"/>
  </Attributes>
</SMTK_AttributeResource>`)
	assert.Equal(t, 0, log.Count(logger.Warning), "%v", log.Records())

	assert.Equal(t, []string{"Fluid", "Solid"}, res.Categories())
	assert.Equal(t, "Expert", res.AdvanceLevelLabel(1))

	def := res.FindDefinition("Material")
	require.NotNil(t, def)
	assert.Equal(t, "A Material", def.Label())
	read, ok := def.LocalAdvanceLevel(attribute.AdvanceRead)
	assert.True(t, ok)
	assert.Equal(t, uint(1), read)
	write, _ := def.LocalAdvanceLevel(attribute.AdvanceWrite)
	assert.Equal(t, uint(1), write)

	rule := def.LocalAssociationRule()
	require.NotNil(t, rule)
	assert.Equal(t, []attribute.Rule{{TypeName: "model.Resource", Filter: "face"}}, rule.AcceptableEntries())

	density := def.FindItemDefinition("density")
	require.NotNil(t, density)
	assert.Equal(t, []string{"Fluid", "Solid"}, density.LocalCategories().Inclusions())
	assert.Equal(t, category.And, density.LocalCategories().InclusionMode())

	partnerDef, ok := def.FindItemDefinition("partner").(*attribute.ReferenceItemDefinition)
	require.True(t, ok, "attribute references become component items")
	assert.Equal(t, attribute.ComponentKind, partnerDef.Kind())

	water := res.FindAttribute("water")
	require.NotNil(t, water)
	assert.Equal(t, 1.5, water.FindValue("density").Float(0))
	assert.False(t, water.FindValue("note").IsSet(0), "empty text is an unset value")

	partner := water.FindReference("partner")
	require.NotNil(t, partner)
	obj := partner.Object(0)
	require.True(t, obj.IsResolved(), "references to later attributes resolve once all exist")
	assert.Equal(t, "steel", obj.Object.Name())
}

func TestRead_Version1UnknownReference(t *testing.T) {
	res, log := readDoc(t, `
<SMTK_AttributeResource Version="1">
  <Definitions>
    <AttDef Type="Link">
      <ItemDefinitions><AttributeRef Name="target"/></ItemDefinitions>
    </AttDef>
  </Definitions>
  <Attributes>
    <Att Name="dangling" Type="Link">
      <Items><AttributeRef Name="target"><Val>nobody</Val></AttributeRef></Items>
    </Att>
  </Attributes>
</SMTK_AttributeResource>`)

	assert.Equal(t, 1, log.Count(logger.Error))
	assert.False(t, res.FindAttribute("dangling").FindReference("target").IsSet(0))
}

func TestRead_Version2(t *testing.T) {
	res, log := readDoc(t, `
<SMTK_AttributeResource Version="2">
  <Analyses Exclusive="true">
    <Analysis Type="CFD" Label="Fluid Flow" Required="true"><Cat>Fluid</Cat></Analysis>
    <Analysis Type="LES" BaseType="CFD"/>
  </Analyses>
  <Definitions>
    <AttDef Type="Solver" AdvanceReadLevel="1" AdvanceWriteLevel="2">
      <ItemDefinitions>
        <Int Name="iterations" NumberOfRequiredValues="2">
          <DefaultValue>10</DefaultValue>
        </Int>
        <Double Name="tolerance">
          <DefaultValue>0.1</DefaultValue>
        </Double>
      </ItemDefinitions>
    </AttDef>
  </Definitions>
  <Attributes>
    <Att Name="solver" Type="Solver" AdvanceWriteLevel="3">
      <Items>
        <Int Name="iterations" NumberOfValues="2">
          <Values><Val Ith="0">50</Val><UnsetVal Ith="1"/></Values>
        </Int>
        <Double Name="tolerance"><UnsetVal/></Double>
      </Items>
    </Att>
  </Attributes>
</SMTK_AttributeResource>`)
	assert.Equal(t, 0, log.Count(logger.Warning), "%v", log.Records())

	analyses := res.Analyses()
	assert.True(t, analyses.AreTopLevelExclusive())
	cfd := analyses.Find("CFD")
	require.NotNil(t, cfd)
	assert.Equal(t, "Fluid Flow", cfd.Label())
	assert.True(t, cfd.IsRequired())
	assert.Equal(t, []string{"Fluid"}, cfd.Categories())
	assert.Same(t, cfd, analyses.Find("LES").Parent())

	def := res.FindDefinition("Solver")
	read, _ := def.LocalAdvanceLevel(attribute.AdvanceRead)
	write, _ := def.LocalAdvanceLevel(attribute.AdvanceWrite)
	assert.Equal(t, uint(1), read)
	assert.Equal(t, uint(2), write)

	att := res.FindAttribute("solver")
	require.NotNil(t, att)
	_, ok := att.LocalAdvanceLevel(attribute.AdvanceRead)
	assert.False(t, ok)
	write, _ = att.LocalAdvanceLevel(attribute.AdvanceWrite)
	assert.Equal(t, uint(3), write)

	iterations := att.FindValue("iterations")
	assert.Equal(t, int64(50), iterations.Int(0))
	assert.False(t, iterations.IsSet(1))
	assert.False(t, att.FindValue("tolerance").IsSet(0))
}

func TestRead_CategoryInfoTakesPrecedence(t *testing.T) {
	res, log := readDoc(t, `
<SMTK_AttributeResource Version="3">
  <Definitions>
    <AttDef Type="BC" CategoryCheckMode="All" CategoryInheritanceMode="And">
      <Categories><Cat>Heat</Cat><Cat>Flow</Cat></Categories>
      <ItemDefinitions>
        <Double Name="value" CategoryCheckMode="All">
          <Categories><Cat>Heat</Cat></Categories>
          <CategoryInfo Combination="Or">
            <Include Combination="Or"><Cat>Flow</Cat></Include>
            <Exclude Combination="And"><Cat>Solid</Cat><Cat>Rigid</Cat></Exclude>
          </CategoryInfo>
        </Double>
      </ItemDefinitions>
    </AttDef>
  </Definitions>
</SMTK_AttributeResource>`)
	assert.Equal(t, 0, log.Count(logger.Warning), "%v", log.Records())

	def := res.FindDefinition("BC")
	require.NotNil(t, def)
	assert.Equal(t, []string{"Flow", "Heat"}, def.LocalCategories().Inclusions())
	assert.Equal(t, category.And, def.LocalCategories().InclusionMode())
	assert.Equal(t, category.And, def.CategoryInheritanceMode())

	cats := def.FindItemDefinition("value").LocalCategories()
	assert.Equal(t, []string{"Flow"}, cats.Inclusions())
	assert.Equal(t, category.Or, cats.InclusionMode())
	assert.Equal(t, []string{"Rigid", "Solid"}, cats.Exclusions())
	assert.Equal(t, category.And, cats.ExclusionMode())
	assert.Equal(t, category.Or, cats.CombinationMode())
}

func TestRead_RuleProblemsAreWarnings(t *testing.T) {
	res, log := readDoc(t, `
<SMTK_AttributeResource Version="3">
  <Definitions>
    <AttDef Type="A"/>
    <AttDef Type="B"/>
    <AttDef Type="C"/>
  </Definitions>
  <Exclusions>
    <Rule><Def>A</Def><Def>Missing</Def><Def>B</Def></Rule>
  </Exclusions>
  <Prerequisites>
    <Rule Type="A"><Def>B</Def></Rule>
    <Rule Type="B"><Def>A</Def><Def>C</Def></Rule>
    <Rule Type="Nope"><Def>A</Def></Rule>
  </Prerequisites>
</SMTK_AttributeResource>`)

	assert.Equal(t, 0, log.Count(logger.Error), "%v", log.Records())
	assert.Equal(t, 3, log.Count(logger.Warning), "%v", log.Records())

	a, b, c := res.FindDefinition("A"), res.FindDefinition("B"), res.FindDefinition("C")
	assert.True(t, a.IsExclusive(b))
	assert.True(t, b.IsExclusive(a))
	assert.Equal(t, []*attribute.Definition{b}, a.Prerequisites())
	assert.Equal(t, []*attribute.Definition{c}, b.Prerequisites(), "the edge closing a cycle is skipped")
}

func TestRead_DerivedBeforeBase(t *testing.T) {
	res, log := readDoc(t, `
<SMTK_AttributeResource Version="3">
  <Definitions>
    <AttDef Type="Inlet" BaseType="BC"/>
    <AttDef Type="BC"/>
    <AttDef Type="Orphan" BaseType="Ghost"/>
  </Definitions>
</SMTK_AttributeResource>`)

	inlet := res.FindDefinition("Inlet")
	require.NotNil(t, inlet)
	assert.Same(t, res.FindDefinition("BC"), inlet.BaseDefinition())
	assert.Nil(t, res.FindDefinition("Orphan"))
	assert.Equal(t, 1, log.Count(logger.Error))
}

func TestRead_Configurations(t *testing.T) {
	res, log := readDoc(t, `
<SMTK_AttributeResource Version="3">
  <Analyses>
    <Analysis Type="Flow"/>
    <Analysis Type="Heat"/>
  </Analyses>
  <Configurations AnalysisAttributeType="Analysis">
    <Config Name="flow only"><Analysis Type="Flow"/></Config>
    <Config Name="broken"><Analysis Type="Radiation"/></Config>
    <Config Name="both"><Analysis Type="Flow"/><Analysis Type="Heat"/></Config>
  </Configurations>
</SMTK_AttributeResource>`)

	assert.Equal(t, 2, log.Count(logger.Error), "%v", log.Records())
	require.NotNil(t, res.FindDefinition("Analysis"))

	flow := res.FindAttribute("flow only")
	require.NotNil(t, flow)
	assert.True(t, flow.Find("Flow").LocalEnabled())
	assert.False(t, flow.Find("Heat").LocalEnabled())

	assert.Nil(t, res.FindAttribute("broken"), "a bad configuration is discarded")

	both := res.FindAttribute("both")
	require.NotNil(t, both, "parsing continues after a bad configuration")
	assert.True(t, both.Find("Flow").LocalEnabled())
	assert.True(t, both.Find("Heat").LocalEnabled())
}

func TestRead_ExclusiveConfigurations(t *testing.T) {
	res, log := readDoc(t, `
<SMTK_AttributeResource Version="3">
  <Analyses Exclusive="true">
    <Analysis Type="CFD"/>
    <Analysis Type="Heat"/>
  </Analyses>
  <Configurations AnalysisAttributeType="Analysis">
    <Config Name="heat"><Analysis Type="Heat"/></Config>
  </Configurations>
</SMTK_AttributeResource>`)
	assert.Equal(t, 0, log.Count(logger.Warning), "%v", log.Records())

	att := res.FindAttribute("heat")
	require.NotNil(t, att)
	assert.Equal(t, "Heat", att.FindValue(attribute.AnalysisItemName).Text(0))
}

func TestRead_ExclusiveConfigurationDiscarded(t *testing.T) {
	res, log := readDoc(t, `
<SMTK_AttributeResource Version="3">
  <Analyses Exclusive="true">
    <Analysis Type="CFD" Exclusive="true"/>
    <Analysis Type="LES" BaseType="CFD"/>
    <Analysis Type="RANS" BaseType="CFD"/>
    <Analysis Type="Heat"/>
  </Analyses>
  <Configurations AnalysisAttributeType="Analysis">
    <Config Name="les"><Analysis Type="CFD"><Analysis Type="LES"/></Analysis></Config>
    <Config Name="dns"><Analysis Type="CFD"><Analysis Type="DNS"/></Analysis></Config>
    <Config Name="heat"><Analysis Type="Heat"/></Config>
  </Configurations>
</SMTK_AttributeResource>`)
	assert.Equal(t, 2, log.Count(logger.Error), "%v", log.Records())

	les := res.FindAttribute("les")
	require.NotNil(t, les)
	choice := les.FindValue(attribute.AnalysisItemName)
	assert.Equal(t, "CFD", choice.Text(0))
	cfd, ok := choice.ChildItem("CFD").(*attribute.ValueItem)
	require.True(t, ok)
	assert.Equal(t, "LES", cfd.Text(0))

	assert.Nil(t, res.FindAttribute("dns"), "an unknown child analysis discards the configuration")

	heat := res.FindAttribute("heat")
	require.NotNil(t, heat, "parsing continues after a discarded configuration")
	assert.Equal(t, "Heat", heat.FindValue(attribute.AnalysisItemName).Text(0))
}

func TestRead_ReferencesStayLazy(t *testing.T) {
	modelID, faceID := uuid.New(), uuid.New()
	linkID, rowID := uuid.New(), uuid.New()
	res, log := readDoc(t, `
<SMTK_AttributeResource Version="3" ID="`+uuid.NewString()+`">
  <Definitions>
    <AttDef Type="BC">
      <ItemDefinitions>
        <Component Name="surface" NumberOfRequiredValues="1">
          <Accepts><Resource Name="model.Resource" Filter="face"/></Accepts>
        </Component>
      </ItemDefinitions>
    </AttDef>
  </Definitions>
  <Attributes>
    <Att Name="wall" Type="BC">
      <Items>
        <Component Name="surface">
          <Val Role="-2">
            <Key><_1_>`+linkID.String()+`</_1_><_2_>`+rowID.String()+`</_2_></Key>
            <RHS><_1_>`+modelID.String()+`</_1_><_2_>`+faceID.String()+`</_2_></RHS>
            <Surrogate Index="0" TypeName="model.Resource" Id="`+modelID.String()+`" Location="mesh.smtk"/>
          </Val>
        </Component>
      </Items>
    </Att>
  </Attributes>
</SMTK_AttributeResource>`)
	assert.Equal(t, 0, log.Count(logger.Warning), "%v", log.Records())

	item := res.FindAttribute("wall").FindReference("surface")
	require.NotNil(t, item)
	obj := item.Object(0)
	require.True(t, obj.Found)
	assert.False(t, obj.IsResolved())
	assert.Equal(t, faceID, obj.Unresolved.ObjectID)
	assert.Equal(t, "mesh.smtk", obj.Unresolved.Surrogate.Location)
}
