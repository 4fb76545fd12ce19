package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Countdown/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Countdown"
	AppID             = "com.github.tartampluch.go-countdown"
	CommandName       = "go-countdown"
	KeyringService    = "com.github.tartampluch.go-countdown"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	EnvPrefix         = "COUNTDOWN"
	ConfigFileName    = "config"
	ConfigFileType    = "yaml"
	ConfigDirName     = ".go-countdown"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1

	// Log rotation (lumberjack).
	LogMaxSizeMB  = 10
	LogMaxBackups = 3
	LogMaxAgeDays = 28
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagConfig     = "config"
	FlagDebug      = "debug"
	FlagDate       = "date"
	FlagLimit      = "limit"
	FlagMonth      = "month"
	FlagQuery      = "query"
	FlagDays       = "days"
	FlagOutput     = "output"
	FlagPort       = "port"
	FlagDescConfig = "Path to the configuration file (YAML)"
	FlagDescDebug  = "Enable debug logging to stderr"
	FlagDescDate   = "Reference date (YYYY-MM-DD) used instead of today"
	FlagDescLimit  = "Maximum number of upcoming events (0 = all)"
	FlagDescMonth  = "Month to display (YYYY-MM), defaults to the reference month"
	FlagDescQuery  = "Free-text filter on team names"
	FlagDescDays   = "Only keep matches starting within this many days (0 = no limit)"
	FlagDescOutput = "Write the calendar to this file instead of stdout"
	FlagDescPort   = "Override the HTTP server port"

	CmdShort         = "Countdowns to yearly events, month grids and match listings"
	CmdUpcomingShort = "List the next occurrences of the catalog events"
	CmdGridShort     = "Print a 6-week month grid"
	CmdMatchesShort  = "List upcoming matches"
	CmdICSShort      = "Export the catalog as an iCalendar feed"
	CmdServeShort    = "Serve the calendar feed and JSON API over HTTP"
	CmdVersionShort  = "Show application version and exit"
	CmdLoginShort    = "Store the web catalog password in the OS keyring (read from stdin)"
	MsgLoginDone     = "Password stored for %s\n"

	MsgVersionOutput = "%s version %s (commit %s, built %s) %s/%s\n"
)

// -----------------------------------------------------------------------------
// Settings Keys (viper)
// -----------------------------------------------------------------------------

const (
	KeySourceMode      = "source.mode"
	KeySourcePath      = "source.path"
	KeySourceURL       = "source.url"
	KeySourceUser      = "source.user"
	KeySourceFormat    = "source.format"
	KeyServerPort      = "server.port"
	KeyRefreshMin      = "refresh_interval_min"
	KeyLanguage        = "language"
	KeyLimit           = "limit"
	KeyLeapDayPolicy   = "leap_day_policy"
	KeyReminderTrigger = "reminder.trigger"
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyToday         = "countdown_today"
	TKeyInDays        = "countdown_in_days" // Requires Count
	TKeyUpcomingTitle = "upcoming_title"
	TKeyMatchesTitle  = "matches_title"
	TKeyMatchVersus   = "match_versus" // Requires TeamA, TeamB
	TKeyNoMatches     = "no_matches"
	TKeyNoEvents      = "no_events"
	TKeyEvtSummary    = "event_summary" // Requires Name
	TKeyCalName       = "calendar_name"
	TKeyFormatDate    = "format_date_long" // Go layout, e.g. "Mon, Jan 2 2006"

	// Weekday headers are looked up as TKeyWeekdayPrefix + "0".."6" (Sunday first).
	TKeyWeekdayPrefix = "weekday_short_"
	// Month names are looked up as TKeyMonthPrefix + "1".."12".
	TKeyMonthPrefix = "month_"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	SourceModeBuiltin    = "builtin"
	SourceModeLocal      = "local"
	SourceModeWeb        = "web"
	FormatAuto           = "auto"
	FormatYAML           = "yaml"
	FormatVCard          = "vcard"
	DefaultPort          = "18081"
	DefaultRefreshMin    = 60
	DefaultLanguage      = "en"
	DefaultLeapYear      = 2000 // Leap year fallback for dates like --02-29
	DefaultLimit         = 6
	DefaultLeapDayPolicy = "roll_forward"
	DisabledInterval     = 0
	UIDNamespace         = "go-countdown-v1" // Seed of the UUIDv5 namespace for event UIDs
	AnniversarySuffix    = " (anniversary)"
	ICSYearsAround       = 1 // Explicit leap-day events are emitted for year-1 .. year+1
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Go Countdown//Engine//EN"
	ICalCalName   = "Countdown"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "gocountdown"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRRule       = "RRULE"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardBDAY        = "BDAY"
	VCardAnniversary = "ANNIVERSARY"
	VCardFN          = "FN"
	VCardN           = "N"
	VCardUID         = "UID"

	DefaultICalRefresh = 1 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing vCard BDAY/ANNIVERSARY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"
	DateFormatMonth     = "2006-01"
	DateFormatMatch     = "Mon Jan 2 15:04"

	// Limits
	MinPort = 1
	MaxPort = 65535

	FormatUID = "%s@%s"

	// FormatFallbackID keys records without an explicit id by name and position.
	FormatFallbackID = "%s-%d"

	// File Extensions
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
	ExtYAML  = ".yaml"
	ExtYML   = ".yml"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	WatchDebounce       = 250 * time.Millisecond
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 16 * 1024 * 1024 // 16MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	AddrSeparator       = ":"

	RouteRoot     = "/"
	RouteICS      = "/calendar.ics"
	RouteUpcoming = "/api/upcoming"
	RouteGrid     = "/api/grid"
	RouteMatches  = "/api/matches"

	QueryMonth = "month"
	QueryQuery = "q"
	QueryDays  = "days"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty  = "configuration error: local path is empty"
	ErrWebURLEmpty     = "configuration error: web URL is empty"
	ErrFetcherMissing  = "internal error: network fetcher is not initialized"
	ErrModeUnsupport   = "configuration error: unsupported source mode"
	ErrFormatUnsupport = "configuration error: unsupported catalog format"
	ErrConfigRead      = "failed to read config"
	ErrConfigDecode    = "failed to unmarshal config"
	ErrConfigInvalid   = "invalid config"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRequired    = "server port is required"
	ErrPortNumber      = "server port must be a number"
	ErrPortRange       = "server port must be between 1 and 65535"
	ErrRefreshNegative = "refresh interval must not be negative"
	ErrLimitNegative   = "limit must not be negative"
	ErrLanguage        = "unsupported language"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrCatalogLoad     = "failed to load event catalog"
	ErrCatalogDecode   = "failed to decode YAML catalog"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrRRule           = "failed to build recurrence rule"
	ErrDateParse       = "unable to parse date"
	ErrMonthParse      = "unable to parse month (expected YYYY-MM)"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrEncodeJSON      = "failed to encode JSON response"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrKeyring         = "keyring operation failed"
	ErrWatcher         = "failed to watch catalog file"
	ErrSyncFailed      = "synchronization failed"
	ErrWriteOutput     = "failed to write output"
	ErrLoginUser       = "source.user must be set before storing a password"
	ErrReadPassword    = "failed to read password from stdin"
	ErrRequestBuild    = "failed to create request"
	ErrNetwork         = "network error during fetch"
	ErrHTTPStatus      = "server returned unexpected status"
	ErrReadBody        = "failed to read response body"
	ErrBodyTooLarge    = "response body exceeds size limit"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgInternalErr  = "Internal Server Error"
	HTTPMsgBadMonth     = "Invalid month parameter, expected YYYY-MM."
	HTTPMsgBadDays      = "Invalid days parameter, expected a non-negative integer."
)

// -----------------------------------------------------------------------------
// Fallbacks & Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummary = "%s"
	FallbackName    = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgSyncStarted   = "Synchronization started..."
	MsgSyncSuccess   = "Synchronization completed successfully."
	MsgWorkerStart   = "Background worker started"
	MsgWorkerStop    = "Worker stopping due to context cancellation"
	MsgAppStop       = "Application stopped gracefully"
	MsgSkippedCard   = "Skipping malformed vCard"
	MsgSkippedDate   = "Skipping invalid date format"
	MsgSkippedEvent  = "Skipping invalid catalog event"
	MsgSkippedMatch  = "Skipping invalid catalog match"
	MsgGenSuccess    = "Calendar generation successful"
	MsgAppStarting   = "Starting application"
	MsgServerListen  = "HTTP server listening"
	MsgServerStop    = "Shutting down HTTP server..."
	MsgCacheUpdated  = "Calendar cache updated"
	MsgLocaleSkip    = "Skipping non-locale file"
	MsgLocaleBadName = "Skipping malformed locale filename"
	MsgLocaleLoaded  = "Locale loaded successfully"
	MsgTransMissing  = "Missing translation key"
	MsgPassMissing   = "No keyring password stored for user"
	MsgLogWarning    = "Warning: %s at %s: %v\n"
	MsgEventToday    = "Event occurs today"
	MsgCatalogLoaded = "Catalog loaded"
	MsgCatalogChange = "Catalog file changed"
	MsgConfigLoaded  = "Configuration loaded"
	MsgConfigDefault = "No configuration file found, using defaults"
	MsgSyncFinished  = "Sync finished"
	MsgFetchStart    = "Initiating catalog download"
	MsgFetchStatus   = "Server returned error status"
	MsgFetchDone     = "Catalog downloaded"
	MsgCatalogEvent  = "Catalog event"
	MsgDuplicateUID  = "Duplicate event UID"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyFormat    = "format"
	LogKeyInterval  = "interval"
	LogKeyUser      = "user"
	LogKeyTotal     = "total_events"
	LogKeyMatches   = "total_matches"
	LogKeyToday     = "events_today"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyName      = "name"
	LogKeyDate      = "date"
	LogKeyDuration  = "duration_ms"
	LogKeyOp        = "op"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompEngine  = "engine"
	CompCatalog = "catalog"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompWatcher = "watcher"
	CompWorker  = "worker"
	CompMain    = "main"
	CompI18n    = "i18n"
	CompConfig  = "config"
	CompKeyring = "keyring"
)
