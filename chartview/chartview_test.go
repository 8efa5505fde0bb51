package chartview

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartdesk/apperror"
	"chartdesk/desk"
	"chartdesk/indicator"
	"chartdesk/mocks"
	"chartdesk/model"
)

func newLoadedDesk(t *testing.T) *desk.Desk {
	t.Helper()
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	provider := mocks.NewMockProvider()
	provider.SetRows("AAPL", model.Timeframe1D,
		mocks.DailyRows(time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), 12, 100))

	d := desk.NewDesk(provider, desk.WithClock(func() time.Time { return now }))
	require.NoError(t, d.AddSymbol("AAPL"))
	_, err := d.RefreshSeries(context.Background(), "AAPL", model.Timeframe1D)
	require.NoError(t, err)
	return d
}

func TestParseOverlays(t *testing.T) {
	specs, err := ParseOverlays("SMA:20, ema:50,MACD:12:26:9,VOLUME")
	require.NoError(t, err)
	require.Len(t, specs, 4)
	assert.Equal(t, OverlaySpec{Kind: indicator.KindSMA, Lengths: []int{20}}, specs[0])
	assert.Equal(t, indicator.KindEMA, specs[1].Kind)
	assert.Equal(t, []int{12, 26, 9}, specs[2].Lengths)
	assert.True(t, specs[0].OnPrice())
	assert.False(t, specs[2].OnPrice())

	specs, err = ParseOverlays("")
	require.NoError(t, err)
	assert.Empty(t, specs)

	for _, raw := range []string{"SMA", "SMA:x", "MACD:12:26", "BOLL:20", "RSI:0"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseOverlays(raw)
			assert.ErrorIs(t, err, apperror.ErrInvalidParameters)
		})
	}
}

func TestLoadOverlays(t *testing.T) {
	d := newLoadedDesk(t)

	overlays, err := LoadOverlays(d, "AAPL", model.Timeframe1D, []OverlaySpec{
		{Kind: indicator.KindSMA, Lengths: []int{3}},
		{Kind: indicator.KindMACD, Lengths: []int{3, 6, 2}},
	})
	require.NoError(t, err)
	require.Len(t, overlays, 4)
	assert.Equal(t, "SMA 3", overlays[0].Name)
	assert.True(t, overlays[0].OnPrice)
	assert.Equal(t, "MACD(3,6,2)", overlays[1].Name)
	assert.False(t, overlays[3].OnPrice)
}

func TestRender(t *testing.T) {
	d := newLoadedDesk(t)

	html, err := Render(d, "aapl", model.Timeframe1D, []OverlaySpec{
		{Kind: indicator.KindSMA, Lengths: []int{3}},
		{Kind: indicator.KindRSI, Lengths: []int{5}},
	})
	require.NoError(t, err)

	body := string(html)
	assert.Contains(t, body, "AAPL 1D")
	assert.Contains(t, body, "Volume")
	assert.Contains(t, body, "SMA 3")
	assert.Contains(t, body, "RSI 5")
	assert.Contains(t, body, "2024-02-01")
}

func TestRenderUnknownKey(t *testing.T) {
	d := newLoadedDesk(t)

	_, err := Render(d, "MSFT", model.Timeframe1D, nil)
	assert.ErrorIs(t, err, apperror.ErrUnknownKey)
}

func TestAlignToQuotes(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	quotes := []model.Quote{{Time: t0}, {Time: t0.AddDate(0, 0, 1)}, {Time: t0.AddDate(0, 0, 2)}}
	data := []model.IndicatorData{{Time: t0.AddDate(0, 0, 2), Value: 42}}

	out := alignToQuotes(quotes, data)
	require.Len(t, out, 3)
	assert.Equal(t, emptyPoint, out[0].Value)
	assert.Equal(t, emptyPoint, out[1].Value)
	assert.Equal(t, 42.0, out[2].Value)
}
