package unit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/toy-eeac/pkg/dto"
)

func mustBase(t *testing.T, value float64, u Unit) PUBase {
	t.Helper()
	base, err := NewPUBase(value, u)
	require.NoError(t, err)
	return base
}

func mustValue(t *testing.T, value float64, u Unit, base *PUBase) Value {
	t.Helper()
	v, err := NewValue(value, u, base)
	require.NoError(t, err)
	return v
}

func TestConversionFactor(t *testing.T) {
	tests := []struct {
		from, to Unit
		want     float64
	}{
		{MW, KW, 1e3},
		{KV, V, 1e3},
		{MVA, MVA, 1},
		{Rad, Deg, 180 / math.Pi},
		{MSec, Sec, 1e-3},
	}
	for _, tt := range tests {
		got, err := ConversionFactor(tt.from, tt.to)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-12, "%s -> %s", tt.from, tt.to)
	}

	_, err := ConversionFactor(MW, KV)
	assert.ErrorIs(t, err, ErrUnitType)
	var typeErr *TypeError
	assert.ErrorAs(t, err, &typeErr)
	assert.Equal(t, MW, typeErr.From)

	_, err = ConversionFactor(Unit("foo"), Unit("bar"))
	assert.ErrorIs(t, err, ErrUnitScale)
}

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit("MVAr")
	require.NoError(t, err)
	assert.Equal(t, MVAR, u)
	assert.Equal(t, ReactivePower, u.Type())

	_, err = ParseUnit("furlong")
	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestPUBase(t *testing.T) {
	_, err := NewPUBase(0, KV)
	assert.ErrorIs(t, err, ErrUnitBase)

	assert.True(t, mustBase(t, 10, KV).Equal(mustBase(t, 10000, V)))
	assert.False(t, mustBase(t, 10, KV).Equal(mustBase(t, 10, V)))
	assert.False(t, mustBase(t, 10, KV).Equal(mustBase(t, 10, MW)))
}

func TestNewValue(t *testing.T) {
	_, err := NewValue(1, PU, nil)
	assert.ErrorIs(t, err, ErrUnitBase)

	base := mustBase(t, 100, MVA)
	_, err = NewValue(1, KV, &base)
	assert.ErrorIs(t, err, ErrUnitType)

	v := mustValue(t, 380, KV, nil)
	_, err = v.PerUnit()
	assert.ErrorIs(t, err, ErrPerUnit)
	assert.Equal(t, "380 kV", v.String())

	kvBase := mustBase(t, 10, KV)
	v = mustValue(t, 380, KV, &kvBase)
	pu, err := v.PerUnit()
	require.NoError(t, err)
	assert.InDelta(t, 38, pu, 1e-12)
	assert.Equal(t, "380 kV [Base: 10 kV]", v.String())
}

func TestToUnit(t *testing.T) {
	base := mustBase(t, 100, MVA)
	v := mustValue(t, 0.5, PU, &base)

	got, err := v.ToUnit(KVA)
	require.NoError(t, err)
	assert.InDelta(t, 50000, got, 1e-9)

	_, err = v.ToUnit(MW)
	assert.ErrorIs(t, err, ErrUnitType)

	noBase := mustValue(t, 1, MW, nil)
	_, err = noBase.ToUnit(PU)
	assert.ErrorIs(t, err, ErrPerUnit)
}

func TestPerUnitRoundTrip(t *testing.T) {
	kvBase := mustBase(t, 225, KV)
	mvaBase := mustBase(t, 100, MVA)
	tests := []struct {
		name   string
		value  Value
		target Unit
	}{
		{"kV to V", mustValue(t, 231.5, KV, &kvBase), V},
		{"kV to MV", mustValue(t, 231.5, KV, &kvBase), MV},
		{"pu to kV", mustValue(t, 1.02, PU, &kvBase), KV},
		{"MVA to VA", mustValue(t, 350, MVA, &mvaBase), VA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, err := tt.value.PerUnit()
			require.NoError(t, err)

			converted, err := tt.value.ToUnit(tt.target)
			require.NoError(t, err)
			base, _ := tt.value.Base()
			again := mustValue(t, converted, tt.target, &base)

			got, err := again.PerUnit()
			require.NoError(t, err)
			assert.InDelta(t, want, got, 1e-8)
		})
	}
}

func TestWithBase(t *testing.T) {
	oldBase := mustBase(t, 10, KV)
	newBase := mustBase(t, 20000, V)

	v := mustValue(t, 2, PU, &oldBase)
	rebased, err := v.WithBase(newBase)
	require.NoError(t, err)

	assert.Equal(t, PU, rebased.Unit())
	assert.InDelta(t, 1, rebased.Value(), 1e-12)
	physical, err := rebased.ToUnit(KV)
	require.NoError(t, err)
	assert.InDelta(t, 20, physical, 1e-9)

	kv := mustValue(t, 20, KV, &oldBase)
	rebased, err = kv.WithBase(newBase)
	require.NoError(t, err)
	pu, err := rebased.PerUnit()
	require.NoError(t, err)
	assert.InDelta(t, 1, pu, 1e-12)

	_, err = kv.WithBase(mustBase(t, 100, MVA))
	assert.ErrorIs(t, err, ErrUnitType)
}

func TestAdd(t *testing.T) {
	base := mustBase(t, 100, MVA)
	otherBase := mustBase(t, 200, MVA)

	sum, err := mustValue(t, 10, MVA, nil).Add(mustValue(t, 500, KVA, nil))
	require.NoError(t, err)
	assert.True(t, sum.Equal(mustValue(t, 10.5, MVA, nil)))

	sum, err = mustValue(t, 10, MVA, nil).Add(mustValue(t, 0.1, PU, &base))
	require.NoError(t, err)
	assert.True(t, sum.Equal(mustValue(t, 20, MVA, &base)))

	sum, err = mustValue(t, 0.1, PU, &base).Add(mustValue(t, 10, MVA, nil))
	require.NoError(t, err)
	assert.Equal(t, PU, sum.Unit())
	assert.InDelta(t, 0.2, sum.Value(), 1e-12)

	_, err = mustValue(t, 0.1, PU, &base).Add(mustValue(t, 0.1, PU, &otherBase))
	assert.ErrorIs(t, err, ErrValueAddBase)

	_, err = mustValue(t, 1, MW, nil).Add(mustValue(t, 1, MVAR, nil))
	assert.ErrorIs(t, err, ErrUnitType)
}

func TestEqual(t *testing.T) {
	base := mustBase(t, 10, KV)

	assert.True(t, mustValue(t, 1, KV, nil).Equal(mustValue(t, 1000, V, nil)))
	assert.True(t, mustValue(t, 1, KV, nil).Equal(mustValue(t, 1000+1e-9, V, nil)))
	assert.False(t, mustValue(t, 1, KV, nil).Equal(mustValue(t, 1001, V, nil)))
	assert.False(t, mustValue(t, 1, KV, &base).Equal(mustValue(t, 1, KV, nil)))
	assert.True(t, mustValue(t, 380, KV, &base).Equal(mustValue(t, 38, PU, &base)))
	assert.False(t, mustValue(t, 1, KV, nil).Equal(mustValue(t, 1, MW, nil)))
}

func TestFromDTO(t *testing.T) {
	v, err := FromDTO(dto.NewValue(90, "deg"))
	require.NoError(t, err)
	rad, err := v.ToUnit(Rad)
	require.NoError(t, err)
	assert.InDelta(t, math.Pi/2, rad, 1e-12)

	_, err = ConvertDTO(dto.NewValue(1, "parsec"), KV)
	assert.ErrorIs(t, err, ErrUnknownUnit)
}
