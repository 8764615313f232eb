package metrics

const namespace = "fleetstock"
