package rubric

// Points holds the per-clause magnitudes of the dimension rubrics. The bucket
// boundaries (word counts, block counts, section counts) are fixed; how many
// points each clause awards or withholds is configuration.
type Points struct {
	DescriptionThin      float64 `mapstructure:"description_thin" yaml:"description_thin" json:"description_thin"`
	DescriptionAdequate  float64 `mapstructure:"description_adequate" yaml:"description_adequate" json:"description_adequate"`
	DescriptionRich      float64 `mapstructure:"description_rich" yaml:"description_rich" json:"description_rich"`
	TriggerBonus         float64 `mapstructure:"trigger_bonus" yaml:"trigger_bonus" json:"trigger_bonus"`
	StopPhrasePenalty    float64 `mapstructure:"stop_phrase_penalty" yaml:"stop_phrase_penalty" json:"stop_phrase_penalty"`
	ToolsUndeclared      float64 `mapstructure:"tools_undeclared" yaml:"tools_undeclared" json:"tools_undeclared"`
	ToolsScoped          float64 `mapstructure:"tools_scoped" yaml:"tools_scoped" json:"tools_scoped"`
	ToolOverPenalty      float64 `mapstructure:"tool_over_penalty" yaml:"tool_over_penalty" json:"tool_over_penalty"`
	ToolOverFloor        float64 `mapstructure:"tool_over_floor" yaml:"tool_over_floor" json:"tool_over_floor"`
	BroadToolPenalty     float64 `mapstructure:"broad_tool_penalty" yaml:"broad_tool_penalty" json:"broad_tool_penalty"`
	StructureDescription float64 `mapstructure:"structure_description" yaml:"structure_description" json:"structure_description"`
	StructureTools       float64 `mapstructure:"structure_tools" yaml:"structure_tools" json:"structure_tools"`
	StructureSections    float64 `mapstructure:"structure_sections" yaml:"structure_sections" json:"structure_sections"`
	StructureExamples    float64 `mapstructure:"structure_examples" yaml:"structure_examples" json:"structure_examples"`
	ExamplesOneBlock     float64 `mapstructure:"examples_one_block" yaml:"examples_one_block" json:"examples_one_block"`
	ExamplesTwoBlocks    float64 `mapstructure:"examples_two_blocks" yaml:"examples_two_blocks" json:"examples_two_blocks"`
	ExamplesManyBlocks   float64 `mapstructure:"examples_many_blocks" yaml:"examples_many_blocks" json:"examples_many_blocks"`
	LabeledFewBonus      float64 `mapstructure:"labeled_few_bonus" yaml:"labeled_few_bonus" json:"labeled_few_bonus"`
	LabeledManyBonus     float64 `mapstructure:"labeled_many_bonus" yaml:"labeled_many_bonus" json:"labeled_many_bonus"`
	DepthFewSections     float64 `mapstructure:"depth_few_sections" yaml:"depth_few_sections" json:"depth_few_sections"`
	DepthMidSections     float64 `mapstructure:"depth_mid_sections" yaml:"depth_mid_sections" json:"depth_mid_sections"`
	DepthManySections    float64 `mapstructure:"depth_many_sections" yaml:"depth_many_sections" json:"depth_many_sections"`
	DepthFewTerms        float64 `mapstructure:"depth_few_terms" yaml:"depth_few_terms" json:"depth_few_terms"`
	DepthMidTerms        float64 `mapstructure:"depth_mid_terms" yaml:"depth_mid_terms" json:"depth_mid_terms"`
	DepthMoreTerms       float64 `mapstructure:"depth_more_terms" yaml:"depth_more_terms" json:"depth_more_terms"`
	DepthManyTerms       float64 `mapstructure:"depth_many_terms" yaml:"depth_many_terms" json:"depth_many_terms"`
	QuantifiedBonus      float64 `mapstructure:"quantified_bonus" yaml:"quantified_bonus" json:"quantified_bonus"`
}

// DefaultPoints returns the documented default magnitudes.
func DefaultPoints() Points {
	return Points{
		DescriptionThin:      2,
		DescriptionAdequate:  6,
		DescriptionRich:      8,
		TriggerBonus:         2,
		StopPhrasePenalty:    1,
		ToolsUndeclared:      5,
		ToolsScoped:          10,
		ToolOverPenalty:      1,
		ToolOverFloor:        3,
		BroadToolPenalty:     2,
		StructureDescription: 3,
		StructureTools:       2,
		StructureSections:    3,
		StructureExamples:    2,
		ExamplesOneBlock:     5,
		ExamplesTwoBlocks:    8,
		ExamplesManyBlocks:   9,
		LabeledFewBonus:      1,
		LabeledManyBonus:     2,
		DepthFewSections:     2,
		DepthMidSections:     4,
		DepthManySections:    5,
		DepthFewTerms:        1,
		DepthMidTerms:        2,
		DepthMoreTerms:       3,
		DepthManyTerms:       4,
		QuantifiedBonus:      2,
	}
}
