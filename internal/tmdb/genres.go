package tmdb

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed genres.yaml
var genresYAML []byte

var genreNames map[int]string

func init() {
	var table struct {
		Genres []Genre `yaml:"genres"`
	}
	if err := yaml.Unmarshal(genresYAML, &table); err != nil {
		panic(fmt.Sprintf("embedded genre table is invalid: %v", err))
	}
	genreNames = make(map[int]string, len(table.Genres))
	for _, g := range table.Genres {
		genreNames[g.ID] = g.Name
	}
}

// GenreName resolves a catalog genre id to its display name, "" if the
// id is not in the shipped table.
func GenreName(id int) string {
	return genreNames[id]
}

// GenreNames resolves a list of genre ids, skipping unknown ids
func GenreNames(ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name := genreNames[id]; name != "" {
			names = append(names, name)
		}
	}
	return names
}
