package ui

import (
	"strings"

	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/yllada/nordvpn-gui/cache"
	"github.com/yllada/nordvpn-gui/common"
	"github.com/yllada/nordvpn-gui/nordvpn"
)

// CountryList is the searchable list of connect targets.
type CountryList struct {
	mainWindow *MainWindow
	box        *gtk.Box
	search     *gtk.SearchEntry
	listBox    *gtk.ListBox
	scrolled   *gtk.ScrolledWindow

	countries []string
	rows      map[string]*countryRow
	connected string
}

type countryRow struct {
	row       *gtk.ListBoxRow
	nameLabel *gtk.Label
	checkIcon *gtk.Image
	expandBtn *gtk.Button
	revealer  *gtk.Revealer
	cityBox   *gtk.Box
	country   string

	citiesLoaded bool
}

// NewCountryList creates the country list widget.
func NewCountryList(mainWindow *MainWindow) *CountryList {
	cl := &CountryList{
		mainWindow: mainWindow,
		rows:       make(map[string]*countryRow),
	}

	cl.box = gtk.NewBox(gtk.OrientationVertical, 0)
	cl.box.SetVExpand(true)

	cl.search = gtk.NewSearchEntry()
	cl.search.SetMarginTop(6)
	cl.search.SetMarginStart(12)
	cl.search.SetMarginEnd(12)
	cl.search.SetObjectProperty("placeholder-text", "Search countries")
	cl.search.ConnectSearchChanged(func() {
		cl.filter(cl.search.Text())
	})
	cl.box.Append(cl.search)

	cl.listBox = gtk.NewListBox()
	cl.listBox.SetSelectionMode(gtk.SelectionNone)
	cl.listBox.ConnectRowActivated(func(row *gtk.ListBoxRow) {
		cl.onRowActivated(row)
	})

	cl.scrolled = gtk.NewScrolledWindow()
	cl.scrolled.SetVExpand(true)
	cl.scrolled.SetChild(cl.listBox)
	cl.box.Append(cl.scrolled)

	return cl
}

// GetWidget returns the root widget.
func (cl *CountryList) GetWidget() gtk.Widgetter {
	return cl.box
}

// SetSensitive enables or disables the list.
func (cl *CountryList) SetSensitive(sensitive bool) {
	cl.listBox.SetSensitive(sensitive)
}

// Load populates the list. Cached countries render immediately; the
// live list is fetched in the background and replaces them.
func (cl *CountryList) Load() {
	if store := cl.mainWindow.app.cache; store != nil {
		ctx, cancel := contextWithCommandTimeout()
		cached, err := store.GetList(ctx, cache.KindCountries)
		cancel()
		if err == nil && len(cached) > 0 {
			cl.setCountries(cached)
		}
	}

	go func() {
		ctx, cancel := contextWithCommandTimeout()
		defer cancel()

		countries, err := cl.mainWindow.app.client.Countries(ctx)
		if err != nil {
			common.LogWarn("failed to list countries: %v", err)
			return
		}

		if store := cl.mainWindow.app.cache; store != nil {
			if err := store.PutList(ctx, cache.KindCountries, countries); err != nil {
				common.LogWarn("failed to cache countries: %v", err)
			}
		}

		glib.IdleAdd(func() {
			cl.setCountries(countries)
		})
	}()
}

// setCountries rebuilds the rows.
func (cl *CountryList) setCountries(countries []string) {
	for _, cr := range cl.rows {
		cl.listBox.Remove(cr.row)
	}
	cl.rows = make(map[string]*countryRow, len(countries))
	cl.countries = countries

	for _, country := range countries {
		cr := cl.createRow(country)
		cl.rows[country] = cr
		cl.listBox.Append(cr.row)
	}

	cl.SetConnectedCountry(cl.connected)
	cl.filter(cl.search.Text())
}

// createRow builds one country row.
func (cl *CountryList) createRow(country string) *countryRow {
	row := gtk.NewListBoxRow()
	row.AddCSSClass("country-row")
	row.SetName(country)

	box := gtk.NewBox(gtk.OrientationHorizontal, 12)
	box.SetMarginTop(8)
	box.SetMarginBottom(8)
	box.SetMarginStart(16)
	box.SetMarginEnd(16)

	icon := gtk.NewImage()
	icon.SetFromIconName("mark-location-symbolic")
	icon.SetPixelSize(16)
	icon.AddCSSClass("country-icon")
	box.Append(icon)

	nameLabel := gtk.NewLabel(nordvpn.DisplayName(country))
	nameLabel.SetXAlign(0)
	nameLabel.SetHExpand(true)
	nameLabel.AddCSSClass("country-name")
	box.Append(nameLabel)

	checkIcon := gtk.NewImage()
	checkIcon.SetFromIconName("object-select-symbolic")
	checkIcon.SetPixelSize(16)
	checkIcon.SetVisible(false)
	box.Append(checkIcon)

	expandBtn := gtk.NewButtonFromIconName("pan-end-symbolic")
	expandBtn.AddCSSClass("flat")
	expandBtn.SetVAlign(gtk.AlignCenter)
	expandBtn.SetTooltipText("Show cities")
	box.Append(expandBtn)

	cityBox := gtk.NewBox(gtk.OrientationVertical, 2)
	cityBox.SetMarginStart(44)
	cityBox.SetMarginEnd(16)
	cityBox.SetMarginBottom(6)

	revealer := gtk.NewRevealer()
	revealer.SetChild(cityBox)
	revealer.SetRevealChild(false)

	outer := gtk.NewBox(gtk.OrientationVertical, 0)
	outer.Append(box)
	outer.Append(revealer)
	row.SetChild(outer)

	cr := &countryRow{
		row:       row,
		nameLabel: nameLabel,
		checkIcon: checkIcon,
		expandBtn: expandBtn,
		revealer:  revealer,
		cityBox:   cityBox,
		country:   country,
	}
	expandBtn.ConnectClicked(func() {
		cl.toggleCities(cr)
	})
	return cr
}

// toggleCities expands or collapses a country's city section. Cities
// are fetched on the first expand.
func (cl *CountryList) toggleCities(cr *countryRow) {
	expand := !cr.revealer.RevealChild()
	cr.revealer.SetRevealChild(expand)
	if !expand {
		cr.expandBtn.SetIconName("pan-end-symbolic")
		return
	}

	cr.expandBtn.SetIconName("pan-down-symbolic")
	if !cr.citiesLoaded {
		cl.loadCities(cr)
	}
}

// loadCities populates a country's city section, cached list first.
func (cl *CountryList) loadCities(cr *countryRow) {
	cr.citiesLoaded = true

	if store := cl.mainWindow.app.cache; store != nil {
		ctx, cancel := contextWithCommandTimeout()
		cached, err := store.GetList(ctx, cache.KindCities(cr.country))
		cancel()
		if err == nil && len(cached) > 0 {
			cl.setCities(cr, cached)
		}
	}

	go func() {
		ctx, cancel := contextWithCommandTimeout()
		defer cancel()

		cities, err := cl.mainWindow.app.client.Cities(ctx, cr.country)
		if err != nil {
			common.LogWarn("failed to list cities for %s: %v", cr.country, err)
			return
		}

		if store := cl.mainWindow.app.cache; store != nil {
			if err := store.PutList(ctx, cache.KindCities(cr.country), cities); err != nil {
				common.LogWarn("failed to cache cities: %v", err)
			}
		}

		glib.IdleAdd(func() {
			cl.setCities(cr, cities)
		})
	}()
}

// setCities rebuilds the city buttons of one country.
func (cl *CountryList) setCities(cr *countryRow, cities []string) {
	for child := cr.cityBox.FirstChild(); child != nil; child = cr.cityBox.FirstChild() {
		cr.cityBox.Remove(child)
	}

	if len(cities) == 0 {
		label := gtk.NewLabel("No cities listed")
		label.AddCSSClass("dim-label")
		label.SetXAlign(0)
		cr.cityBox.Append(label)
		return
	}

	for _, city := range cities {
		target := cr.country + " " + city
		btn := gtk.NewButtonWithLabel(nordvpn.DisplayName(city))
		btn.AddCSSClass("flat")
		btn.AddCSSClass("city-button")
		btn.SetHAlign(gtk.AlignStart)
		btn.ConnectClicked(func() {
			cl.mainWindow.app.Connect(target)
		})
		cr.cityBox.Append(btn)
	}
}

// onRowActivated connects to the clicked country.
func (cl *CountryList) onRowActivated(row *gtk.ListBoxRow) {
	country := row.Name()
	if country == "" {
		return
	}
	cl.mainWindow.app.Connect(country)
}

// filter hides rows not matching the search text.
func (cl *CountryList) filter(query string) {
	query = strings.ToLower(strings.TrimSpace(query))
	for _, cr := range cl.rows {
		name := strings.ToLower(nordvpn.DisplayName(cr.country))
		cr.row.SetVisible(query == "" || strings.Contains(name, query))
	}
}

// SetConnectedCountry marks the row of the connected country.
func (cl *CountryList) SetConnectedCountry(country string) {
	cl.connected = country
	normalized := strings.ToLower(strings.ReplaceAll(country, " ", "_"))

	for _, cr := range cl.rows {
		match := normalized != "" &&
			strings.ToLower(cr.country) == normalized
		cr.checkIcon.SetVisible(match)
		if match {
			cr.row.AddCSSClass("connected")
		} else {
			cr.row.RemoveCSSClass("connected")
		}
	}
}
