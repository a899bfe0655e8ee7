package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"flightdeck/models"
)

var ErrNotConfigured = errors.New("amadeus not configured")

// MinKeywordLength is the shortest keyword sent to the location lookup.
const MinKeywordLength = 2

// ─── Amadeus Client ───────────────────────────────────────────────────────────

type AmadeusClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	accessToken  string
	tokenExpiry  time.Time
	mu           sync.Mutex
	httpClient   *http.Client
}

func NewAmadeusClient(clientID, clientSecret, baseURL string) *AmadeusClient {
	return &AmadeusClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *AmadeusClient) Configured() bool {
	return c != nil && c.clientID != "" && c.clientSecret != ""
}

// Warm fetches a token up front so the first search is not slowed by auth.
func (c *AmadeusClient) Warm(ctx context.Context) {
	if !c.Configured() {
		return
	}
	if err := c.refreshToken(ctx); err != nil {
		log.Printf("⚠️  Amadeus token pre-warm failed: %v", err)
		return
	}
	log.Println("✅ Amadeus API authenticated")
}

// ─── OAuth2 Token ─────────────────────────────────────────────────────────────

func (c *AmadeusClient) refreshToken(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/security/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token request failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse token response: %w", err)
	}

	c.mu.Lock()
	c.accessToken = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn-30) * time.Second)
	c.mu.Unlock()

	return nil
}

func (c *AmadeusClient) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	expired := time.Now().After(c.tokenExpiry)
	token := c.accessToken
	c.mu.Unlock()

	if expired || token == "" {
		if err := c.refreshToken(ctx); err != nil {
			return "", err
		}
		c.mu.Lock()
		token = c.accessToken
		c.mu.Unlock()
	}
	return token, nil
}

func (c *AmadeusClient) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("amadeus error (%d): %s", resp.StatusCode, providerMessage(respBody))
	}
	return respBody, nil
}

// providerMessage pulls the human-readable detail out of an Amadeus error body.
func providerMessage(body []byte) string {
	var e struct {
		Errors []struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &e) == nil && len(e.Errors) > 0 {
		if e.Errors[0].Detail != "" {
			return e.Errors[0].Detail
		}
		return e.Errors[0].Title
	}
	return strings.TrimSpace(string(body))
}

// ─── Flight Search ────────────────────────────────────────────────────────────

// SearchFlights searches flights via the Amadeus Flight Offers Search API.
// Passenger count and cabin are sent along; fares are still scaled locally.
func (c *AmadeusClient) SearchFlights(ctx context.Context, p models.SearchParams) ([]models.Flight, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	adults := p.Passengers
	if adults < 1 {
		adults = 1
	}
	q := url.Values{}
	q.Set("originLocationCode", p.Origin)
	q.Set("destinationLocationCode", p.Destination)
	q.Set("departureDate", p.DepartureDate)
	if p.ReturnDate != "" {
		q.Set("returnDate", p.ReturnDate)
	}
	q.Set("adults", strconv.Itoa(adults))
	q.Set("travelClass", p.CabinClass.ProviderCode())
	q.Set("currencyCode", "USD")
	q.Set("max", "50")

	body, err := c.get(ctx, "/v2/shopping/flight-offers", q)
	if err != nil {
		return nil, fmt.Errorf("flight search failed: %w", err)
	}
	return parseFlightOffers(body)
}

type amadeusEndpoint struct {
	IataCode string `json:"iataCode"`
	Terminal string `json:"terminal"`
	At       string `json:"at"`
}

type amadeusSegment struct {
	ID          string          `json:"id"`
	Departure   amadeusEndpoint `json:"departure"`
	Arrival     amadeusEndpoint `json:"arrival"`
	CarrierCode string          `json:"carrierCode"`
	Number      string          `json:"number"`
	Duration    string          `json:"duration"`
}

type amadeusFlightOffersResponse struct {
	Data []struct {
		ID    string `json:"id"`
		Price struct {
			GrandTotal string `json:"grandTotal"`
			Currency   string `json:"currency"`
		} `json:"price"`
		Itineraries []struct {
			Duration string           `json:"duration"`
			Segments []amadeusSegment `json:"segments"`
		} `json:"itineraries"`
		ValidatingAirlineCodes []string `json:"validatingAirlineCodes"`
	} `json:"data"`
	Dictionaries struct {
		Carriers  map[string]string `json:"carriers"`
		Locations map[string]struct {
			CityCode    string `json:"cityCode"`
			CountryCode string `json:"countryCode"`
		} `json:"locations"`
	} `json:"dictionaries"`
}

func parseFlightOffers(data []byte) ([]models.Flight, error) {
	var resp amadeusFlightOffersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse flight offers: %w", err)
	}

	airline := func(code string) models.Airline {
		name := titleCase(resp.Dictionaries.Carriers[code])
		if name == "" {
			name = airlineName(code)
		}
		return models.Airline{Code: code, Name: name, Logo: airlineLogo(code)}
	}
	airport := func(code string) models.Airport {
		loc := resp.Dictionaries.Locations[code]
		return models.Airport{Code: code, City: loc.CityCode, Country: loc.CountryCode}
	}

	flights := make([]models.Flight, 0, len(resp.Data))
	for _, offer := range resp.Data {
		if len(offer.Itineraries) == 0 || len(offer.Itineraries[0].Segments) == 0 {
			continue
		}
		price := parsePrice(offer.Price.GrandTotal)
		if price <= 0 {
			continue
		}

		outbound := offer.Itineraries[0]
		segments := make([]models.Segment, 0, len(outbound.Segments))
		for i, s := range outbound.Segments {
			id := s.ID
			if id == "" {
				id = strconv.Itoa(i + 1)
			}
			segments = append(segments, models.Segment{
				ID:           offer.ID + "-" + id,
				FlightNumber: s.CarrierCode + s.Number,
				Airline:      airline(s.CarrierCode),
				Departure:    models.Endpoint{Airport: airport(s.Departure.IataCode), At: s.Departure.At},
				Arrival:      models.Endpoint{Airport: airport(s.Arrival.IataCode), At: s.Arrival.At},
				Duration:     parseISODuration(s.Duration),
			})
		}

		first, last := segments[0], segments[len(segments)-1]
		carrier := first.Airline.Code
		if carrier == "" && len(offer.ValidatingAirlineCodes) > 0 {
			carrier = offer.ValidatingAirlineCodes[0]
		}

		f := models.Flight{
			ID:           offer.ID,
			Price:        price,
			Currency:     offer.Price.Currency,
			Airline:      airline(carrier),
			FlightNumber: first.FlightNumber,
			Departure:    first.Departure,
			Arrival:      last.Arrival,
			Duration:     parseISODuration(outbound.Duration),
			Segments:     segments,
		}
		f.Normalize()
		flights = append(flights, f)
	}

	return flights, nil
}

// ─── Location Search ──────────────────────────────────────────────────────────

// SearchLocations looks up airports and cities matching keyword. Keywords
// shorter than MinKeywordLength return no results without a request.
func (c *AmadeusClient) SearchLocations(ctx context.Context, keyword string) ([]models.Location, error) {
	keyword = strings.TrimSpace(keyword)
	if utf8.RuneCountInString(keyword) < MinKeywordLength {
		return []models.Location{}, nil
	}
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("keyword", keyword)
	q.Set("subType", "AIRPORT,CITY")
	q.Set("page[limit]", "20")

	body, err := c.get(ctx, "/v1/reference-data/locations", q)
	if err != nil {
		return nil, fmt.Errorf("location search failed: %w", err)
	}

	var resp struct {
		Data []struct {
			SubType  string `json:"subType"`
			Name     string `json:"name"`
			IataCode string `json:"iataCode"`
			Address  struct {
				CityName    string `json:"cityName"`
				CountryName string `json:"countryName"`
				CountryCode string `json:"countryCode"`
			} `json:"address"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse locations: %w", err)
	}

	locations := make([]models.Location, 0, len(resp.Data))
	for _, d := range resp.Data {
		city := d.Address.CityName
		if city == "" {
			city = d.Name
		}
		locations = append(locations, models.Location{
			Code:        d.IataCode,
			Name:        titleCase(d.Name),
			City:        titleCase(city),
			Country:     titleCase(d.Address.CountryName),
			CountryCode: d.Address.CountryCode,
			Type:        models.LocationType(d.SubType),
		})
	}
	return locations, nil
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

// parseISODuration converts an ISO 8601 duration (PT5H30M, P1DT2H) to minutes.
func parseISODuration(iso string) int {
	iso = strings.TrimPrefix(strings.ToUpper(iso), "P")
	minutes := 0
	num := 0
	inTime := false
	for _, r := range iso {
		switch {
		case r >= '0' && r <= '9':
			num = num*10 + int(r-'0')
		case r == 'T':
			inTime = true
		case r == 'D':
			minutes += num * 24 * 60
			num = 0
		case r == 'H' && inTime:
			minutes += num * 60
			num = 0
		case r == 'M' && inTime:
			minutes += num
			num = 0
		default:
			num = 0
		}
	}
	return minutes
}

func parsePrice(s string) float64 {
	price, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return price
}

// Amadeus returns upper-case names ("PARIS", "GUINEA-BISSAU"). A Caser
// holds state, so each call gets its own.
func titleCase(s string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}

func airlineLogo(code string) string {
	if code == "" {
		return ""
	}
	return fmt.Sprintf("https://pics.avs.io/200/200/%s.png", code)
}

// airlineName returns full airline name from IATA code
func airlineName(code string) string {
	names := map[string]string{
		"TK": "Turkish Airlines",
		"LH": "Lufthansa",
		"AF": "Air France",
		"BA": "British Airways",
		"EK": "Emirates",
		"QR": "Qatar Airways",
		"FR": "Ryanair",
		"U2": "EasyJet",
		"W6": "Wizz Air",
		"UA": "United Airlines",
		"AA": "American Airlines",
		"DL": "Delta Air Lines",
		"B6": "JetBlue",
		"KL": "KLM",
		"IB": "Iberia",
		"LX": "Swiss International Air Lines",
		"SQ": "Singapore Airlines",
		"CX": "Cathay Pacific",
		"NH": "ANA",
		"JL": "Japan Airlines",
		"EY": "Etihad Airways",
		"VS": "Virgin Atlantic",
		"AC": "Air Canada",
	}
	if name, ok := names[code]; ok {
		return name
	}
	if code != "" {
		return code + " Airlines"
	}
	return "Unknown Airline"
}
