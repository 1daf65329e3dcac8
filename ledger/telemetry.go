package ledger

const tracerName = "wee-greetings/ledger"
