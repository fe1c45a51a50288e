package configuration

type Config struct {
	RegistryRoot         string `yaml:"registry_root"`           // Directory searched recursively for pack.yaml files
	LocalPacksRoot       string `yaml:"local_packs_root"`        // Flat directory of local pack specs
	ReportPath           string `yaml:"report_path"`             // Precomputed drift report (JSON)
	LabelPrefix          string `yaml:"label_prefix"`            // Prefix for derived labels (default: "semantic-drift")
	ApplyLabels          bool   `yaml:"apply_labels"`            // Apply derived labels to the pull request
	PostCommentWhenClean bool   `yaml:"post_comment_when_clean"` // Also post comment when nothing was found
}
