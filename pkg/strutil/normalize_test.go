package strutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oalvocuritiba/kg-do-amor-api/pkg/strutil"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Feijão Carioca", "feijao carioca"},
		{"AÇÚCAR", "acucar"},
		{"  Óleo de Soja  ", "oleo de soja"},
		{"arroz", "arroz"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, strutil.Normalize(c.in), "entrada: %q", c.in)
	}
}

func TestContainsNormalized(t *testing.T) {
	assert.True(t, strutil.ContainsNormalized("Feijão Carioca 1kg", "feijao"))
	assert.True(t, strutil.ContainsNormalized("AÇÚCAR REFINADO", "açucar"))
	assert.True(t, strutil.ContainsNormalized("Leite em Pó", "PÓ"))
	assert.False(t, strutil.ContainsNormalized("Arroz Branco", "feijao"))
}
