package config

// Landerfile represents the structure of the lander.yaml configuration file.
// Every field is optional; absent fields keep their defaults.
type Landerfile struct {
	Version     string                 `yaml:"version"`
	Src         string                 `yaml:"src"`
	Dest        string                 `yaml:"dest"`
	Parallelism int                    `yaml:"parallelism"`
	Server      *ServerDTO             `yaml:"server"`
	Styles      *StylesDTO             `yaml:"styles"`
	Scripts     *ScriptsDTO            `yaml:"scripts"`
	Images      *ImagesDTO             `yaml:"images"`
	Webp        *WebpDTO               `yaml:"webp"`
	Sprite      *SpriteDTO             `yaml:"sprite"`
	Paths       map[string]*PathSetDTO `yaml:"paths"`
}

// ServerDTO configures the development server.
type ServerDTO struct {
	Host   string `yaml:"host"`
	Port   *int   `yaml:"port"`
	CORS   *bool  `yaml:"cors"`
	Reload *bool  `yaml:"reload"`
}

// StylesDTO configures the style compiler.
type StylesDTO struct {
	Compiler    []string `yaml:"compiler"`
	Postprocess []string `yaml:"postprocess"`
	Output      string   `yaml:"output"`
}

// ScriptsDTO configures the script bundler.
type ScriptsDTO struct {
	Output string `yaml:"output"`
	Target string `yaml:"target"`
}

// ImagesDTO configures the image optimizers.
type ImagesDTO struct {
	PNGLevel *int     `yaml:"pngLevel"`
	PNG      []string `yaml:"png"`
	JPEG     []string `yaml:"jpeg"`
}

// WebpDTO configures WebP conversion.
type WebpDTO struct {
	Quality *int     `yaml:"quality"`
	Encoder []string `yaml:"encoder"`
	Src     []string `yaml:"src"`
}

// SpriteDTO configures the icon sprite.
type SpriteDTO struct {
	Output string   `yaml:"output"`
	Src    []string `yaml:"src"`
}

// PathSetDTO overrides the layout of one asset category.
type PathSetDTO struct {
	Dir     *string  `yaml:"dir"`
	Src     []string `yaml:"src"`
	Entries []string `yaml:"entries"`
	Dest    *string  `yaml:"dest"`
}
