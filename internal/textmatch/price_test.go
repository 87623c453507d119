package textmatch

import "testing"

func TestExtractPrice(t *testing.T) {
	testCases := []struct {
		name      string
		text      string
		want      float64
		wantFound bool
	}{
		{name: "thousands separated by space", text: "Nike jeans 1 299 kr", want: 1299, wantFound: true},
		{name: "thousands separated by nbsp", text: "Pris: 1\u00a0299 kr", want: 1299, wantFound: true},
		{name: "thousands separated by dot", text: "1.299 kr", want: 1299, wantFound: true},
		{name: "colon dash marker", text: "Jacka 299:-", want: 299, wantFound: true},
		{name: "sek marker", text: "Hoodie 450 SEK", want: 450, wantFound: true},
		{name: "decimals", text: "Mössa 249,50 kr", want: 249.5, wantFound: true},
		{name: "lowest marked price wins", text: "Nu 199 kr, tidigare 399 kr", want: 199, wantFound: true},
		{name: "marked price beats bare number", text: "Modell 5000, pris 350 kr", want: 350, wantFound: true},
		{name: "waist before price", text: "Nike jeans W32 450 kr", want: 450, wantFound: true},
		{name: "marked size before price", text: "Jacka stl 38 299 kr", want: 299, wantFound: true},
		{name: "size marker with colon", text: "Kappa storlek: 40 1 200 kr", want: 1200, wantFound: true},
		{name: "letter size before grouped price", text: "Jacka stl L 1 299 kr", want: 1299, wantFound: true},
		{name: "implausible grouped amount", text: "Levis 501 450 kr", want: 450, wantFound: true},
		{name: "bare number fallback", text: "Jacka 450", want: 450, wantFound: true},
		{name: "lowest bare number", text: "art 9000 nu 450", want: 450, wantFound: true},
		{name: "no digits", text: "Snygg jacka i storlek M", wantFound: false},
		{name: "short bare number ignored", text: "stl 38", wantFound: false},
		{name: "empty", text: "", wantFound: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, found := ExtractPrice(tc.text)
			if found != tc.wantFound {
				t.Fatalf("ExtractPrice(%q) found = %v, want %v", tc.text, found, tc.wantFound)
			}
			if found && got != tc.want {
				t.Errorf("ExtractPrice(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestStripPrices(t *testing.T) {
	got := Normalize(StripPrices("Barnjeans 150 kr stl 128"))
	if got != "barnjeans stl 128" {
		t.Errorf("StripPrices() = %q, want %q", got, "barnjeans stl 128")
	}
}

func TestStripPricesKeepsSizes(t *testing.T) {
	testCases := []struct {
		text string
		want string
	}{
		{"Nike jeans W32 450 kr", "nike jeans w32"},
		{"Jacka stl 38 299 kr", "jacka stl 38"},
		{"Jacka 1 299 kr stl M", "jacka stl m"},
	}
	for _, tc := range testCases {
		if got := Normalize(StripPrices(tc.text)); got != tc.want {
			t.Errorf("StripPrices(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestExtractMarkedPrice(t *testing.T) {
	if _, found := ExtractMarkedPrice("Levis 501 W32 L34"); found {
		t.Error("expected no price without a currency marker")
	}
	got, found := ExtractMarkedPrice("Levis 501 W32 L34 · 450 kr")
	if !found || got != 450 {
		t.Errorf("ExtractMarkedPrice() = (%v, %v), want (450, true)", got, found)
	}
}
