package imagelink

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mapping ties a lower-case vegetable name to an image file.
type Mapping struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`
}

type mappingFile struct {
	Mappings []Mapping `yaml:"mappings"`
}

// DefaultMappings returns the built-in name to file table.
// Order matters: partial matches pick the first entry that fits.
func DefaultMappings() []Mapping {
	return []Mapping{
		{"onion", "Onion.jpg"},
		{"tomato", "Tomato.jpeg"},
		{"potato", "Potato.jpeg"},
		{"carrot", "Carrot.webp"},
		{"cabbage", "Cabbage.jpg"},
		{"cauliflower", "Cauliflower.png"},
		{"capsicum", "Capsicum.png"},
		{"cucumber", "Cucumber.jpg"},
		{"garlic", "Garlic.jpeg"},
		{"ginger", "Ginger.jpg"},
		{"lemon", "Lemon.jpg"},
		{"bitter gourd", "Bitter Gourd.jpeg"},
		{"bottle gourd", "Bottle Gourd(Sorakaya).jpeg"},
		{"broad beans", "Broad Beans.jpeg"},
		{"brinjal", "Brinjal white.jpeg"},
		{"brinjal black", "Brinjal Black.jpeg"},
		{"nagpuri brinjal", "Nagpuri Brinjal.jpeg"},
		{"cluster beans", "Cluster Beans.jpeg"},
		{"combo", "Combo.png"},
		{"curry leaves + coriander + mint leaves", "Curry Leaves + Coriander + Mint Leaves.png"},
		{"curry leaves", "Curry Leaves + Coriander + Mint Leaves.png"},
		{"coriander", "Curry Leaves + Coriander + Mint Leaves.png"},
		{"mint leaves", "Curry Leaves + Coriander + Mint Leaves.png"},
		{"dondakaya", "Dondakaya.jpeg"},
		{"dosakaya", "Dosakaya(1-2 pieces).jpeg"},
		{"drumstick", "Drumstick.jpg"},
		{"french beans", "French Beans.jpeg"},
		{"green chilli", "Green Chilli.jpeg"},
		{"ladies finger", "Ladies Finger.jpg"},
		{"palakura leaves", "Palakura Leaves.jpeg"},
		{"raw banana", "Raw Banana(2 pieces).jpeg"},
		{"raw mango", "Raw Mango.jpeg"},
		{"sweet potato", "Sweet Potato.jpeg"},
		{"beerakaya", "Beerakaya.jpeg"},
		{"beetroot", "Beetroot.jpg"},
		{"chamagadda", "Chamagadda.png"},
		{"gongura leaves", "Gongura Leaves.jpeg"},
		{"brinjal vilote", "Brinjal Vilote.jpg"},
		{"green chilli dark", "Green Chilli Dark.jpeg"},
	}
}

// ParseMappings decodes a YAML document of the form
//
//	mappings:
//	  - name: tomato
//	    file: Tomato.jpeg
//
// Names are lower-cased and trimmed. Entries without a name or file are rejected.
func ParseMappings(data []byte) ([]Mapping, error) {
	var doc mappingFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode image mappings: %w", err)
	}
	out := make([]Mapping, 0, len(doc.Mappings))
	for i, m := range doc.Mappings {
		name := normalizeName(m.Name)
		file := strings.TrimSpace(m.File)
		if name == "" || file == "" {
			return nil, fmt.Errorf("image mapping %d: name and file are required", i)
		}
		out = append(out, Mapping{Name: name, File: file})
	}
	return out, nil
}

// LoadMappingsFile reads mappings from a YAML file.
func LoadMappingsFile(path string) ([]Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image mappings: %w", err)
	}
	return ParseMappings(data)
}
