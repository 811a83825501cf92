package imagelink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	r := NewResolver(nil)

	tests := []struct {
		name string
		veg  string
		want string
	}{
		{name: "exact", veg: "Tomato", want: "/images/Tomato.jpeg"},
		{name: "exact ignores case and space", veg: "  BEETROOT ", want: "/images/Beetroot.jpg"},
		{name: "exact beats partial", veg: "Brinjal Black", want: "/images/Brinjal Black.jpeg"},
		{name: "name contains mapping", veg: "Country Tomato", want: "/images/Tomato.jpeg"},
		{name: "mapping contains name", veg: "gourd", want: "/images/Bitter Gourd.jpeg"},
		{name: "first partial wins", veg: "Sweet Potato Red", want: "/images/Potato.jpeg"},
		{name: "shared image", veg: "Coriander", want: "/images/Curry Leaves + Coriander + Mint Leaves.png"},
		{name: "no match", veg: "Dragon Fruit", want: "/images/default.jpeg"},
		{name: "empty name", veg: "  ", want: "/images/default.jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Match(tt.veg))
		})
	}
}

func TestResolveCustomURLWins(t *testing.T) {
	r := NewResolver(nil)

	assert.Equal(t, "https://cdn.example.com/t.png", r.Resolve("Tomato", " https://cdn.example.com/t.png "))
	assert.Equal(t, "/images/My Tomato.png", r.Resolve("Tomato", "My Tomato.png"))
	assert.Equal(t, "/images/Tomato.jpeg", r.Resolve("Tomato", "   "))
}

func TestNormalizeImagePath(t *testing.T) {
	assert.Equal(t, "/images/default.jpeg", NormalizeImagePath(""))
	assert.Equal(t, "http://x.test/a.jpg", NormalizeImagePath("http://x.test/a.jpg"))
	assert.Equal(t, "/static/a.jpg", NormalizeImagePath("/static/a.jpg"))
	assert.Equal(t, "/images/a.jpg", NormalizeImagePath("a.jpg"))
	assert.Equal(t, "assets/a.jpg", NormalizeImagePath("assets/a.jpg"))
}

func TestWithBasePathAndFileCheck(t *testing.T) {
	present := map[string]bool{"Potato.jpeg": true}
	r := NewResolver(nil,
		WithBasePath("/static/img"),
		WithFileCheck(func(file string) bool { return present[file] }),
	)

	assert.Equal(t, "/static/img/Potato.jpeg", r.Match("Potato"))
	assert.Equal(t, "/static/img/default.jpeg", r.Match("Tomato"))
	assert.True(t, r.IsDefault(r.Match("Tomato")))

	file, ok := r.MatchFile("Baby Potato")
	assert.True(t, ok)
	assert.Equal(t, "Potato.jpeg", file)
}

func TestParseMappings(t *testing.T) {
	data := []byte(`
mappings:
  - name: " Tomato "
    file: tomato-red.png
  - name: okra
    file: okra.jpg
`)
	mappings, err := ParseMappings(data)
	require.NoError(t, err)
	assert.Equal(t, []Mapping{{"tomato", "tomato-red.png"}, {"okra", "okra.jpg"}}, mappings)

	r := NewResolver(mappings)
	assert.Equal(t, "/images/okra.jpg", r.Match("Okra"))
	assert.Equal(t, "/images/default.jpeg", r.Match("Onion"))

	_, err = ParseMappings([]byte("mappings:\n  - name: x\n"))
	assert.Error(t, err)

	_, err = ParseMappings([]byte("mappings: [unterminated"))
	assert.Error(t, err)
}
