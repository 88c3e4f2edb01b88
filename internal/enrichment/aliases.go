package enrichment

// path addresses a metadata value; more than one element walks nested maps
type path []string

// Accepted metadata keys per normalized field, highest priority first.
// Nested shapes come before flattened ones.
var (
	deviceTypeKeys    = []path{{"device", "type"}, {"deviceType"}, {"device_type"}, {"device"}}
	deviceOSKeys      = []path{{"device", "os"}, {"os"}, {"deviceOs"}, {"device_os"}, {"osName"}, {"os_name"}, {"platform"}}
	deviceBrowserKeys = []path{{"device", "browser"}, {"browser"}, {"browserName"}, {"browser_name"}}
	deviceVersionKeys = []path{
		{"device", "version"}, {"version"}, {"browserVersion"}, {"browser_version"},
		{"appVersion"}, {"app_version"}, {"osVersion"}, {"os_version"},
	}

	geoCountryKeys = []path{
		{"geo", "country"}, {"location", "country"}, {"country"}, {"countryCode"}, {"country_code"},
		{"geoCountry"}, {"geo_country"},
	}
	geoRegionKeys = []path{
		{"geo", "region"}, {"location", "region"}, {"geo", "state"}, {"location", "state"}, {"region"}, {"state"},
		{"geoRegion"}, {"geo_region"},
	}
	geoCityKeys = []path{{"geo", "city"}, {"location", "city"}, {"city"}, {"geoCity"}, {"geo_city"}}
	geoLatKeys  = []path{
		{"geo", "lat"}, {"geo", "latitude"}, {"location", "lat"}, {"location", "latitude"},
		{"lat"}, {"latitude"}, {"geoLat"}, {"geo_lat"},
	}
	geoLngKeys = []path{
		{"geo", "lng"}, {"geo", "lon"}, {"geo", "long"}, {"geo", "longitude"},
		{"location", "lng"}, {"location", "lon"}, {"location", "long"}, {"location", "longitude"},
		{"lng"}, {"lon"}, {"long"}, {"longitude"}, {"geoLng"}, {"geo_lng"},
	}
)
