package urls

// APIDocumentation is the OpenSprinkler firmware HTTP API reference,
// describing every /j* and /c* endpoint and its query parameters.
const APIDocumentation = "https://openthings.freshdesk.com/support/solutions/articles/5000716363-os-api-documents"

// FirmwareReleases lists firmware builds; older builds lack /ja, /je and /pq.
const FirmwareReleases = "https://github.com/OpenSprinkler/OpenSprinkler-Firmware/releases"

// UserManual is the controller user manual, covering station attributes,
// master stations and sensor options.
const UserManual = "https://openthings.freshdesk.com/support/solutions/folders/5000147083"
