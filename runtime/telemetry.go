package runtime

const tracerName = "wee-greetings/runtime"
